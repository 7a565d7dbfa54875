package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"prospect-engine/internal/domain"
)

func TestPersonRecordJoinsPhoneNumbers(t *testing.T) {
	rec := PersonRecord(domain.Person{PhoneNumbers: []string{"111", "222"}})
	idx := indexOf(Header, "phone_numbers")
	if rec[idx] != "111;222" {
		t.Fatalf("phone_numbers = %q, want %q", rec[idx], "111;222")
	}
	if len(rec) != len(Header) {
		t.Fatalf("record has %d fields, header has %d", len(rec), len(Header))
	}
}

func TestWriteCompanyCSV(t *testing.T) {
	dir := t.TempDir()
	verified := true
	r := domain.ProspectResult{
		Company: domain.Company{ID: "c-1", Domain: "Acme.com", Name: "Acme"},
		Persons: []domain.Person{
			{FirstName: "Ada", LastName: "Lovelace", Title: "CTO", PhoneNumbers: []string{"111", "222"}, EmailVerified: &verified},
			{FirstName: "Bob", LastName: "Byte", Title: "VP, Eng", CompanyID: "other"},
		},
	}

	path, err := WriteCompanyCSV(dir, r)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "acme.com.csv" {
		t.Fatalf("unexpected file name %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(Header, ",") {
		t.Fatalf("unexpected header %v", rows[0])
	}
	get := func(row int, col string) string { return rows[row][indexOf(Header, col)] }
	if get(1, "phone_numbers") != "111;222" || get(1, "email_verified") != "true" || get(1, "company_id") != "c-1" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if get(2, "title") != "VP, Eng" || get(2, "company_id") != "other" || get(2, "email_verified") != "" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestWriteAllSkipsCompaniesWithoutPersons(t *testing.T) {
	dir := t.TempDir()
	log, hook := logtest.NewNullLogger()
	results := domain.CollectedResults{
		{Company: domain.Company{ID: "1", Domain: "empty.com", Name: "E"}},
		{Company: domain.Company{ID: "2", Domain: "full.com", Name: "F"}, Persons: []domain.Person{{FirstName: "A"}}},
	}

	paths, err := WriteAll(dir, results, log)
	if err != nil {
		t.Fatalf("write all: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "full.com.csv" {
		t.Fatalf("unexpected paths %v", paths)
	}
	if _, err := os.Stat(filepath.Join(dir, "empty.com.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected no file for a company without persons")
	}
	if len(hook.AllEntries()) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(hook.AllEntries()))
	}
}

func TestFileNameIsPathSafe(t *testing.T) {
	cases := map[string]string{
		"a.com":         "a.com.csv",
		"../etc/passwd": ".._etc_passwd.csv",
		"":              "_.csv",
	}
	for in, want := range cases {
		if got := FileName(in); got != want {
			t.Fatalf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadDomains(t *testing.T) {
	in := "\ufeffname, Domain ,size\nAcme,https://www.Acme.com/,10\nBlank,,3\nShort\nZeta,zeta.io,1\n"
	got, err := readDomains(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0] != "acme.com" || got[1] != "zeta.io" {
		t.Fatalf("unexpected domains %v", got)
	}
}

func TestReadDomainsRequiresColumn(t *testing.T) {
	if _, err := readDomains(strings.NewReader("name,url\nA,b\n")); err == nil {
		t.Fatalf("expected an error for a missing domain column")
	}
	if _, err := readDomains(strings.NewReader("")); err == nil {
		t.Fatalf("expected an error for empty input")
	}
}

func TestLockDirIsExclusive(t *testing.T) {
	dir := t.TempDir()
	unlock, err := LockDir(dir)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := LockDir(dir); err == nil {
		t.Fatalf("expected second lock to fail")
	}
	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	unlock2, err := LockDir(dir)
	if err != nil {
		t.Fatalf("lock after unlock: %v", err)
	}
	_ = unlock2()
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
