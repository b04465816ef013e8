package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/importer"
)

// ImportResult summarizes an import.
type ImportResult struct {
	Added         int
	Duplicates    int
	SkippedNoYear int
}

// Import adds the contacts of src that are not stored yet (same name and
// birth date) and then rebuilds the notification schedule. Contacts without
// a birth year are skipped: age and zodiac need a full date.
func (s *Service) Import(ctx context.Context, src importer.Source) (ImportResult, error) {
	drafts, err := s.Importer.Import(ctx, src)
	if err != nil {
		return ImportResult{}, err
	}
	return s.ImportDrafts(ctx, drafts)
}

// ImportDrafts stores already decoded drafts.
func (s *Service) ImportDrafts(ctx context.Context, drafts []importer.Draft) (ImportResult, error) {
	log := slog.With(config.LogKeyComponent, config.CompImporter)

	existing, err := s.Store.GetAll(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, b := range existing {
		seen[dedupeKey(b.Name, b.BirthDate)] = struct{}{}
	}

	var res ImportResult
	for _, d := range drafts {
		if !d.YearKnown {
			res.SkippedNoYear++
			log.Debug(config.MsgSkippedNoYear, config.LogKeyName, d.Name)
			continue
		}
		key := dedupeKey(d.Name, d.BirthDate)
		if _, dup := seen[key]; dup {
			res.Duplicates++
			continue
		}

		b := engine.Birthday{
			ID:            s.IDs.NewID(),
			Name:          d.Name,
			BirthDate:     d.BirthDate,
			Category:      s.Categories.Normalize(""),
			ZodiacSign:    engine.ZodiacSign(d.BirthDate),
			Notes:         d.Notes,
			Photo:         d.Photo,
			RememberPhoto: d.Photo != "",
		}
		s.syncCalendar(ctx, &b)
		if err := s.Store.Add(ctx, b); err != nil {
			s.unsyncCalendar(ctx, b.CalendarEventID)
			return res, err
		}
		seen[key] = struct{}{}
		res.Added++
	}

	if _, err := s.Lifecycle.RescheduleAll(ctx); err != nil {
		return res, err
	}

	log.Info(config.MsgImported,
		config.LogKeyAdded, res.Added,
		config.LogKeyDuplicates, res.Duplicates,
		config.LogKeySkipped, res.SkippedNoYear)
	return res, nil
}

func dedupeKey(name string, birthDate time.Time) string {
	return fmt.Sprintf(config.FormatHashInput,
		strings.ToLower(strings.TrimSpace(name)),
		birthDate.Format(config.DateFormatFullDash))
}
