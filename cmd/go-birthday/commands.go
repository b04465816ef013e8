package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-birthday-reminders/internal/calendar"
	"github.com/tartampluch/go-birthday-reminders/internal/category"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/importer"
	"github.com/tartampluch/go-birthday-reminders/internal/locale"
	"github.com/tartampluch/go-birthday-reminders/internal/notify"
	"github.com/tartampluch/go-birthday-reminders/internal/service"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
	"github.com/zalando/go-keyring"
)

// session is the service stack of one command invocation. Commands run
// without a display, so notifications use the polling strategy: nothing is
// pending outside the process and Pending previews what the tray would fire.
type session struct {
	store   *storage.SQLiteRepository
	svc     *service.Service
	polling *notify.PollingScheduler
	tr      *locale.Translator
}

func (c *cli) open(cmd *cobra.Command) (*session, error) {
	store, err := storage.OpenSQLite(c.dbPath)
	if err != nil {
		return nil, err
	}

	cats := category.NewStore(store)
	if err := cats.Load(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, err
	}

	tr := locale.New(c.lang)
	polling := notify.NewPollingScheduler(nil, store)

	// The feed has no publisher here; it only assigns event ids that the tray
	// app serves once it seeds its own feed from storage.
	feed := calendar.NewFeed(nil, true)
	feed.Summary = tr.EventSummary

	svc := service.New(store, cats, feed, notify.NewManager(polling, store))
	svc.UncategorizedLabel = tr.Msg(config.TKeyUncategorized)
	return &session{store: store, svc: svc, polling: polling, tr: tr}, nil
}

func (s *session) close() {
	_ = s.store.Close()
}

// withSession opens a session around fn.
func (c *cli) withSession(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := c.open(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		return fn(cmd, args, s)
	}
}

func (c *cli) listCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   config.CmdList,
		Short: config.CmdListShort,
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			rows, err := s.svc.Upcoming(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderHint(config.OutNoBirthdays))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderUpcoming(s, rows))
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, config.FlagLimit, 0, config.FlagDescLimit)
	return cmd
}

func (c *cli) addCommand() *cobra.Command {
	var name, date, cat, notes, title, message, at string
	cmd := &cobra.Command{
		Use:   config.CmdAdd,
		Short: config.CmdAddShort,
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			birthDate, err := time.ParseInLocation(config.DateFormatFullDash, date, time.Local)
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrDateFlag, err)
			}

			b := engine.Birthday{
				Name:      name,
				BirthDate: birthDate,
				Category:  cat,
				Notes:     notes,
			}
			if at != "" {
				b.ScheduledMessages = []engine.ScheduledMessage{{
					Title:         title,
					Message:       message,
					ScheduledTime: at,
					Active:        true,
				}}
			}

			created, err := s.svc.Add(cmd.Context(), b)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.OutAdded, created.Name, created.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, config.FlagName, "", config.FlagDescName)
	cmd.Flags().StringVar(&date, config.FlagDate, "", config.FlagDescDate)
	cmd.Flags().StringVar(&cat, config.FlagCategory, config.DefaultCategoryID, config.FlagDescCategory)
	cmd.Flags().StringVar(&notes, config.FlagNotes, "", config.FlagDescNotes)
	cmd.Flags().StringVar(&title, config.FlagTitle, "", config.FlagDescTitle)
	cmd.Flags().StringVar(&message, config.FlagMessage, "", config.FlagDescMessage)
	cmd.Flags().StringVar(&at, config.FlagAt, "", config.FlagDescAt)
	_ = cmd.MarkFlagRequired(config.FlagName)
	_ = cmd.MarkFlagRequired(config.FlagDate)
	return cmd
}

func (c *cli) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdDelete,
		Short: config.CmdDeleteShort,
		Args:  cobra.ExactArgs(1),
		RunE: c.withSession(func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.OutDeleted, args[0])
			return nil
		}),
	}
}

func (c *cli) pendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdPending,
		Short: config.CmdPendingShrt,
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			pending := s.polling.Pending(cmd.Context())
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderHint(config.OutNoPending))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPending(s.tr, pending))
			return nil
		}),
	}
}

func (c *cli) rescheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdReschedule,
		Short: config.CmdReschedSh,
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			n, err := s.svc.Reschedule(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.OutRescheduled, n, s.polling.Mode())
			return nil
		}),
	}
}

func (c *cli) importCommand() *cobra.Command {
	var file, url, user string
	cmd := &cobra.Command{
		Use:   config.CmdImport,
		Short: config.CmdImportShort,
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			var src importer.Source
			switch {
			case file != "" && url == "":
				src = importer.Source{Mode: config.SourceModeLocal, LocalPath: file}
			case url != "" && file == "":
				src = importer.Source{Mode: config.SourceModeWeb, WebURL: url, WebUser: user}
				if user != "" {
					pass, err := keyring.Get(config.KeyringService, user)
					if err != nil && !errors.Is(err, keyring.ErrNotFound) {
						return err
					}
					src.WebPass = pass
				}
			default:
				return errors.New(config.ErrSourceFlags)
			}

			res, err := s.svc.Import(cmd.Context(), src)
			if errors.Is(err, importer.ErrUnauthorized) && src.WebPass == "" {
				return fmt.Errorf("%w (%s)", err, config.ErrCredsHint)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.tr.Format(config.TKeyImportResult, map[string]any{
				"Imported":   res.Added,
				"Duplicates": res.Duplicates,
				"Skipped":    res.SkippedNoYear,
			}))
			return nil
		}),
	}
	cmd.Flags().StringVar(&file, config.FlagFile, "", config.FlagDescFile)
	cmd.Flags().StringVar(&url, config.FlagURL, "", config.FlagDescURL)
	cmd.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	return cmd
}

func (c *cli) credentialsCommand() *cobra.Command {
	var user string
	set := &cobra.Command{
		Use:   config.CmdCredsSet,
		Short: config.CmdCredsSetSh,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(cmd.ErrOrStderr(), config.OutPasswordPrompt)
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("%s: %w", config.ErrPasswordRead, err)
			}
			password := strings.TrimRight(line, "\r\n")

			if err := keyring.Set(config.KeyringService, user, password); err != nil {
				return fmt.Errorf("%s: %w", config.ErrKeyringSet, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), config.OutCredsSaved, user)
			return nil
		},
	}
	set.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	_ = set.MarkFlagRequired(config.FlagUser)

	creds := &cobra.Command{Use: config.CmdCreds, Short: config.CmdCredsShort}
	creds.AddCommand(set)
	return creds
}

// formatAge renders the age reached at the next occurrence.
func formatAge(u service.Upcoming) string {
	if !u.AgeKnown {
		return config.AgeUnknown
	}
	return strconv.Itoa(u.AgeNext)
}
