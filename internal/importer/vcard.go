// Package importer reads birthdays from vCard streams, either a local .vcf
// file or a CardDAV/WebDAV URL.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

// Source selects where vCards are read from.
type Source struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string
	WebURL    string
	WebUser   string
	WebPass   string
}

// Draft is a contact with a birthday, before it becomes a stored birthday.
type Draft struct {
	Name      string
	BirthDate time.Time
	YearKnown bool
	Notes     string
	Photo     string
}

// Importer turns a Source into drafts.
type Importer struct {
	Fetcher VCardFetcher
}

func New(fetcher VCardFetcher) *Importer {
	return &Importer{Fetcher: fetcher}
}

// Import reads every contact with a parseable birthday from src.
func (im *Importer) Import(ctx context.Context, src Source) ([]Draft, error) {
	reader, err := im.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(ctx, reader)
}

func (im *Importer) open(ctx context.Context, src Source) (io.ReadCloser, error) {
	switch src.Mode {
	case config.SourceModeLocal:
		if src.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.LocalPath)
	case config.SourceModeWeb:
		if src.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, src.WebURL, src.WebUser, src.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}

// Decode parses a vCard stream. Malformed cards and cards without a usable
// BDAY are skipped so one bad entry does not lose the rest.
func Decode(ctx context.Context, r io.Reader) ([]Draft, error) {
	decoder := vcard.NewDecoder(r)
	var drafts []Draft
	processed := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompImporter,
				config.LogKeyError, err)
			continue
		}
		processed++

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}
		birthDate, yearKnown, err := parseDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompImporter,
				config.LogKeyValue, bday.Value)
			continue
		}

		drafts = append(drafts, Draft{
			Name:      cardName(card),
			BirthDate: birthDate,
			YearKnown: yearKnown,
			Notes:     fieldValue(card, config.VCardNote),
			Photo:     cardPhoto(card),
		})
	}

	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompImporter,
		config.LogKeyTotal, processed,
		config.LogKeyFound, len(drafts))
	return drafts, nil
}

// cardName prefers FN, then N, then a placeholder.
func cardName(card vcard.Card) string {
	if fn := fieldValue(card, config.VCardFN); fn != "" {
		return fn
	}
	if n := fieldValue(card, config.VCardN); n != "" {
		return n
	}
	return config.FallbackName
}

func fieldValue(card vcard.Card, name string) string {
	if f := card.Get(name); f != nil {
		return strings.TrimSpace(f.Value)
	}
	return ""
}

// cardPhoto returns a URL or data URI. Inline base64 photos (vCard 3) are
// converted to a data URI.
func cardPhoto(card vcard.Card) string {
	f := card.Get(config.VCardPhoto)
	if f == nil || f.Value == "" {
		return ""
	}
	v := strings.TrimSpace(f.Value)
	for _, prefix := range []string{config.PrefixHTTP, config.PrefixHTTPS, config.PrefixDataURI} {
		if strings.HasPrefix(v, prefix) {
			return v
		}
	}

	enc := strings.ToLower(f.Params.Get(config.VCardParamEncoding))
	if enc != config.VCardEncodingB && enc != config.VCardEncodingB64 {
		return ""
	}
	imgType := strings.ToLower(f.Params.Get(config.VCardParamType))
	if imgType == "" {
		imgType = config.DefaultImageType
	}
	return fmt.Sprintf(config.FormatDataURI, imgType, v)
}

// parseDate handles the BDAY formats seen in the wild. Dates without a year
// are placed in a leap year so that Feb 29 survives.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true, nil
		}
	}

	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
