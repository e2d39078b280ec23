package services

import (
	"github.com/emberridge/inkwell/pkg/internal/database"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DoReferenceCountAudit re-runs the full recount in its own transaction and
// logs any drift it had to repair. Scheduled from main.
func DoReferenceCountAudit() {
	log.Debug().Msg("Now auditing tag reference counts...")

	var repaired int
	if err := database.C.Transaction(func(tx *gorm.DB) error {
		var err error
		repaired, err = RecountTagReferences(tx)
		return err
	}); err != nil {
		log.Error().Err(err).Msg("An error occurred when auditing tag reference counts...")
		return
	}

	if repaired > 0 {
		log.Warn().Int("repaired", repaired).Msg("Tag reference counts had drifted and were repaired.")
	} else {
		log.Debug().Msg("Tag reference counts are consistent.")
	}
}
