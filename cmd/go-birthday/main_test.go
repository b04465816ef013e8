package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-birthday-reminders/internal/config"
	"github.com/tartampluch/go-birthday-reminders/internal/engine"
	"github.com/tartampluch/go-birthday-reminders/internal/importer"
	"github.com/tartampluch/go-birthday-reminders/internal/storage"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

type testCLI struct {
	t      *testing.T
	dbPath string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return &testCLI{t: t, dbPath: filepath.Join(t.TempDir(), config.DBFileName)}
}

// run executes one command line against the test database.
func (tc *testCLI) run(args ...string) (string, error) {
	return tc.runWithInput("", args...)
}

func (tc *testCLI) runWithInput(stdin string, args ...string) (string, error) {
	tc.t.Helper()
	c := &cli{}
	defer c.closeLog()

	root := c.rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--"+config.FlagDB, tc.dbPath))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (tc *testCLI) birthdays() []engine.Birthday {
	tc.t.Helper()
	repo, err := storage.OpenSQLite(tc.dbPath)
	require.NoError(tc.t, err)
	defer repo.Close()
	all, err := repo.GetAll(context.Background())
	require.NoError(tc.t, err)
	return all
}

func (tc *testCLI) mustRun(args ...string) string {
	tc.t.Helper()
	out, err := tc.run(args...)
	require.NoError(tc.t, err, out)
	return out
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestVersionFlag(t *testing.T) {
	tc := newTestCLI(t)
	out := tc.mustRun("--version")
	assert.Equal(t, config.CmdRoot+" version "+config.Version+"\n", out)
}

func TestAddListAndPending(t *testing.T) {
	tc := newTestCLI(t)

	out := tc.mustRun(config.CmdAdd,
		"--name", "Ada Lovelace",
		"--date", "1815-12-10",
		"--category", "family",
		"--message", "{name} turns {age}",
		"--at", "09:00")
	assert.Contains(t, out, "Added Ada Lovelace")

	all := tc.birthdays()
	require.Len(t, all, 1)
	assert.Equal(t, "family", all[0].Category)
	assert.Equal(t, "Sagittarius", all[0].ZodiacSign)
	require.Len(t, all[0].ScheduledMessages, 1)
	assert.True(t, all[0].ScheduledMessages[0].Active)
	assert.NotEmpty(t, all[0].CalendarEventID)

	list := tc.mustRun(config.CmdList)
	assert.Contains(t, list, "Ada Lovelace")
	assert.Contains(t, list, "Family")
	assert.Contains(t, list, all[0].ID)

	pending := tc.mustRun(config.CmdPending)
	assert.Contains(t, pending, "Birthday: Ada Lovelace")
	assert.Contains(t, pending, "09:00")

	resched := tc.mustRun(config.CmdReschedule)
	assert.Equal(t, "1 notifications scheduled (poll mode)\n", resched)
}

func TestAdd_Errors(t *testing.T) {
	tc := newTestCLI(t)

	_, err := tc.run(config.CmdAdd, "--name", "Ada", "--date", "10/12/1815")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrDateFlag)

	_, err = tc.run(config.CmdAdd, "--name", "Ada", "--date", "1815-12-10", "--at", "9h")
	require.Error(t, err)

	_, err = tc.run(config.CmdAdd, "--date", "1815-12-10")
	require.Error(t, err, "name is required")

	assert.Empty(t, tc.birthdays())
}

func TestList_Empty(t *testing.T) {
	tc := newTestCLI(t)
	assert.Contains(t, tc.mustRun(config.CmdList), config.OutNoBirthdays)
	assert.Contains(t, tc.mustRun(config.CmdPending), config.OutNoPending)
}

func TestList_Language(t *testing.T) {
	tc := newTestCLI(t)
	tc.mustRun(config.CmdAdd, "--name", "Ada", "--date", "1815-12-10")

	out := tc.mustRun(config.CmdList, "--"+config.FlagLang, "fr")
	assert.Contains(t, out, "Nom")
}

func TestDelete(t *testing.T) {
	tc := newTestCLI(t)
	tc.mustRun(config.CmdAdd, "--name", "Ada", "--date", "1815-12-10", "--at", "09:00")
	id := tc.birthdays()[0].ID

	out := tc.mustRun("delete", id)
	assert.Equal(t, "Deleted "+id+"\n", out)
	assert.Empty(t, tc.birthdays())

	_, err := tc.run("delete", id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = tc.run("delete")
	assert.Error(t, err, "id argument is required")
}

func TestCategoriesWorkflow(t *testing.T) {
	tc := newTestCLI(t)
	tc.mustRun(config.CmdAdd, "--name", "Ada", "--date", "1815-12-10", "--category", "work")
	tc.mustRun(config.CmdAdd, "--name", "Alan", "--date", "1912-06-23", "--category", "work")

	stats := tc.mustRun(config.CmdCats)
	assert.Contains(t, stats, "work")
	assert.Contains(t, stats, "Birthdays")

	_, err := tc.run(config.CmdCats, "delete", "work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 birthdays use this category")

	out := tc.mustRun(config.CmdCats, "delete", "work", "--"+config.FlagReassign, "friends")
	assert.Contains(t, out, "Category work deleted")
	for _, b := range tc.birthdays() {
		assert.Equal(t, "friends", b.Category)
	}

	out = tc.mustRun(config.CmdCats, "restore", "work")
	assert.Equal(t, "Category work restored\n", out)

	out = tc.mustRun(config.CmdCats, "delete", "friends", "--"+config.FlagOrphan)
	assert.Contains(t, out, "Category friends deleted")

	orphans := tc.mustRun(config.CmdCats, "orphans")
	assert.Contains(t, orphans, "Ada")
	assert.Contains(t, orphans, "Alan")

	_, err = tc.run(config.CmdCats, "delete", "work", "--"+config.FlagReassign, "family", "--"+config.FlagOrphan)
	assert.Error(t, err, "flags are mutually exclusive")
}

func TestCategoriesAddAndRename(t *testing.T) {
	tc := newTestCLI(t)

	out := tc.mustRun(config.CmdCats, "add", "--name", "Book Club", "--icon", "📚", "--color", "#aa5500")
	assert.True(t, strings.HasPrefix(out, "Category book-club-"), out)

	out = tc.mustRun(config.CmdCats, "rename", "family", "--name", "Kin")
	assert.Equal(t, "Category family updated\n", out)

	stats := tc.mustRun(config.CmdCats)
	assert.Contains(t, stats, "Kin")
	assert.Contains(t, stats, "Book Club")

	_, err := tc.run(config.CmdCats, "rename", "nope", "--name", "X")
	assert.Error(t, err)

	assert.Contains(t, tc.mustRun(config.CmdCats, "orphans"), config.OutNoOrphans)
}

func TestImport(t *testing.T) {
	tc := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	vcard := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Grace Hopper\r\nBDAY:19061209\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:3.0\r\nFN:No Year\r\nBDAY:--0412\r\nEND:VCARD\r\n"
	require.NoError(t, os.WriteFile(path, []byte(vcard), config.FilePermUserRW))

	out := tc.mustRun(config.CmdImport, "--"+config.FlagFile, path)
	assert.Equal(t, "Imported 1 birthdays (0 duplicates, 1 without a birth year)\n", out)

	out = tc.mustRun(config.CmdImport, "--"+config.FlagFile, path)
	assert.Equal(t, "Imported 0 birthdays (1 duplicates, 1 without a birth year)\n", out)
	assert.Len(t, tc.birthdays(), 1)

	_, err := tc.run(config.CmdImport)
	require.Error(t, err)
	assert.Equal(t, config.ErrSourceFlags, err.Error())
}

func TestImport_RejectedWithoutStoredPassword(t *testing.T) {
	keyring.MockInit()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()
	tc := newTestCLI(t)

	_, err := tc.run(config.CmdImport, "--"+config.FlagURL, ts.URL, "--"+config.FlagUser, "ada")
	require.Error(t, err)
	assert.ErrorIs(t, err, importer.ErrUnauthorized)
	assert.Contains(t, err.Error(), config.ErrCredsHint)

	require.NoError(t, keyring.Set(config.KeyringService, "ada", "wrong"))
	_, err = tc.run(config.CmdImport, "--"+config.FlagURL, ts.URL, "--"+config.FlagUser, "ada")
	assert.ErrorIs(t, err, importer.ErrUnauthorized)
	assert.NotContains(t, err.Error(), config.ErrCredsHint, "A stored password that was rejected needs no hint")
}

func TestCredentialsSet(t *testing.T) {
	keyring.MockInit()
	tc := newTestCLI(t)

	out, err := tc.runWithInput("s3cret\n", config.CmdCreds, config.CmdCredsSet, "--"+config.FlagUser, "ada")
	require.NoError(t, err)
	assert.Contains(t, out, "Password stored for ada")

	got, err := keyring.Get(config.KeyringService, "ada")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestDefaultDBPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := defaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, config.DBFileName, filepath.Base(path))
	assert.DirExists(t, filepath.Dir(path))
}
