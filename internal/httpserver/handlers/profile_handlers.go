package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/models"
)

// The profile, population and region tables hold exactly one row each,
// enforced by the primary key on the fixed singleton key plus an ON CONFLICT
// upsert. There is no duplicate-cleanup path.

func upsertSingleton(db *gorm.DB, record any) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(record).Error
}

func getSingleton(db *gorm.DB, lg *zap.SugaredLogger, w http.ResponseWriter, record any, name string) {
	if err := db.First(record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing saved yet; the zero value is a valid empty page.
			respondData(w, http.StatusOK, "ok", record)
			return
		}
		lg.Errorw(name+" read failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondData(w, http.StatusOK, "ok", record)
}

func GetVillageProfile(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		getSingleton(db, lg, w, &models.VillageProfile{}, "village profile")
	}
}

func PutVillageProfile(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.VillageProfile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p.Key = models.SingletonKey
		p.UpdatedAt = time.Now()
		if err := upsertSingleton(db, &p); err != nil {
			lg.Errorw("village profile upsert failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:     auth.UserID(r.Context()),
			Action:     audit.ActionUpdate,
			EntityType: "village_profile",
		}))
		respondData(w, http.StatusOK, "village profile saved", p)
	}
}

func GetPopulationStats(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		getSingleton(db, lg, w, &models.PopulationStat{}, "population stats")
	}
}

func PutPopulationStats(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.PopulationStat
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if p.Total < 0 || p.Male < 0 || p.Female < 0 || p.Households < 0 {
			respondError(w, http.StatusBadRequest, "counts cannot be negative")
			return
		}
		p.Key = models.SingletonKey
		p.UpdatedAt = time.Now()
		if err := upsertSingleton(db, &p); err != nil {
			lg.Errorw("population stats upsert failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:     auth.UserID(r.Context()),
			Action:     audit.ActionUpdate,
			EntityType: "population_stats",
		}))
		respondData(w, http.StatusOK, "population statistics saved", p)
	}
}

func GetRegionData(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		getSingleton(db, lg, w, &models.RegionData{}, "region data")
	}
}

func PutRegionData(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.RegionData
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if p.AreaKM2 < 0 {
			respondError(w, http.StatusBadRequest, "area_km2 cannot be negative")
			return
		}
		p.Key = models.SingletonKey
		p.UpdatedAt = time.Now()
		if err := upsertSingleton(db, &p); err != nil {
			lg.Errorw("region data upsert failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:     auth.UserID(r.Context()),
			Action:     audit.ActionUpdate,
			EntityType: "region_data",
		}))
		respondData(w, http.StatusOK, "region data saved", p)
	}
}
