package dict

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// writeTestDataset writes a manifest and a data file under root/id and
// returns the dataset directory.
func writeTestDataset(t *testing.T, root, id, manifestExtra, dataFile, data string) string {
	t.Helper()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := "id: " + id + "\nversion: \"1.0\"\nsource: unit test\nlicense: CC0\ndata_file: " + dataFile + "\n" + manifestExtra
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, dataFile), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadDataset_JSONDefaults(t *testing.T) {
	dir := writeTestDataset(t, t.TempDir(), "fuzhou", "dialect: fuzhou\n", "entries.json", `[
  {"headword": " 侬 ", "gloss": "you", "tags": ["pronoun", " ", ""]},
  {"id": "x", "word": "伊", "dialect": "min"},
  {"gloss": "no headword"}
]`)

	ds, err := LoadDataset(dir)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	want := []lexicon.Entry{
		{ID: "fuzhou-1", Headword: "侬", Gloss: "you", Dialect: "fuzhou", Tags: []string{"pronoun"}},
		{ID: "x", Headword: "伊", Dialect: "min"},
		{ID: "fuzhou-3", Gloss: "no headword", Dialect: "fuzhou"},
	}
	if diff := cmp.Diff(want, ds.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if ds.Manifest.Source != "unit test" {
		t.Errorf("Source = %q, want unit test", ds.Manifest.Source)
	}
}

func TestLoadDataset_JSONWrapper(t *testing.T) {
	dir := writeTestDataset(t, t.TempDir(), "wrapped", "", "entries.json",
		"\ufeff{\"entries\": [{\"id\": \"a\", \"headword\": \"阿\"}]}")

	ds, err := LoadDataset(dir)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(ds.Entries) != 1 || ds.Entries[0].Headword != "阿" {
		t.Errorf("entries = %+v, want one entry 阿", ds.Entries)
	}
}

func TestLoadDataset_EmptyJSON(t *testing.T) {
	dir := writeTestDataset(t, t.TempDir(), "empty", "", "entries.json", "  \n")

	ds, err := LoadDataset(dir)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(ds.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(ds.Entries))
	}
}

func TestLoadDataset_CSV(t *testing.T) {
	data := "ID;Word;Gloss;Romanization;IPA;Alternates;Tags;Examples\n" +
		"n1;侬;you;nung2;nuŋ˧˧;nöng|noeng;pronoun|common;侬好::hello|侬去\n" +
		";;;;;;;\n" +
		";阿拉;we;;;;;\n"
	dir := writeTestDataset(t, t.TempDir(), "wu", "dialect: shanghai\nformat:\n  delimiter: \";\"\n", "entries.csv", data)

	ds, err := LoadDataset(dir)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	want := []lexicon.Entry{
		{
			ID: "n1", Headword: "侬", Gloss: "you", Dialect: "shanghai",
			Pronunciation: &lexicon.Pronunciation{
				Romanization:           "nung2",
				IPA:                    "nuŋ˧˧",
				AlternateRomanizations: []string{"nöng", "noeng"},
			},
			Tags:     []string{"pronoun", "common"},
			Examples: []lexicon.Example{{Sentence: "侬好", Note: "hello"}, {Sentence: "侬去"}},
		},
		{ID: "wu-2", Headword: "阿拉", Gloss: "we", Dialect: "shanghai"},
	}
	if diff := cmp.Diff(want, ds.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDataset_CSVNoHeader(t *testing.T) {
	dir := writeTestDataset(t, t.TempDir(), "pos", "format:\n  has_header: false\n", "entries.csv",
		"c1,你,you,cantonese,pronoun,nei5\n")

	ds, err := LoadDataset(dir)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(ds.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(ds.Entries))
	}
	e := ds.Entries[0]
	if e.ID != "c1" || e.Headword != "你" || e.POS != "pronoun" || e.Romanization() != "nei5" {
		t.Errorf("entry = %+v, want positional columns", e)
	}
}

func TestLoadDataset_CSVEncoding(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String("headword,gloss\n食饭,eat\n")
	if err != nil {
		t.Fatal(err)
	}
	dir := writeTestDataset(t, t.TempDir(), "gbk", "format:\n  encoding: gbk\n", "entries.csv", encoded)

	ds, err := LoadDataset(dir)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(ds.Entries) != 1 || ds.Entries[0].Headword != "食饭" {
		t.Errorf("entries = %+v, want 食饭 decoded from gbk", ds.Entries)
	}
}

func TestLoadDataset_CSVMissingHeadwordColumn(t *testing.T) {
	dir := writeTestDataset(t, t.TempDir(), "rom", "", "entries.csv", "id,romanization,gloss\na,nung2,you\n")

	ds, err := LoadDataset(dir)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	want := []lexicon.Entry{{
		ID: "a", Gloss: "you",
		Pronunciation: &lexicon.Pronunciation{Romanization: "nung2"},
	}}
	if diff := cmp.Diff(want, ds.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDataset_CSVNoSearchableColumn(t *testing.T) {
	dir := writeTestDataset(t, t.TempDir(), "bad", "", "entries.csv", "id,pos\na,noun\n")

	if _, err := LoadDataset(dir); err == nil {
		t.Error("expected error for header without searchable column")
	}
}

func TestLoadDataset_DuplicateID(t *testing.T) {
	dir := writeTestDataset(t, t.TempDir(), "dup", "", "entries.json",
		`[{"id": "a", "headword": "一"}, {"id": "a", "headword": "二"}]`)

	_, err := LoadDataset(dir)
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
}

func TestLoadDataset_UnknownExtension(t *testing.T) {
	dir := writeTestDataset(t, t.TempDir(), "xml", "", "entries.xml", "<entries/>")

	_, err := LoadDataset(dir)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestLoadManifest_MissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFile)
	os.WriteFile(path, []byte("version: \"1.0\"\n"), 0o644)

	if _, err := LoadManifest(path); err == nil {
		t.Error("expected error for manifest without id")
	}
}

func TestLoadManifest_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFile)
	os.WriteFile(path, []byte("id: plain\n"), 0o644)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.DataFile != "entries.json" {
		t.Errorf("DataFile = %q, want entries.json", m.DataFile)
	}
	if !m.Format.hasHeader() {
		t.Error("hasHeader = false, want true by default")
	}
	if m.Format.delimiter() != ',' {
		t.Errorf("delimiter = %q, want ','", m.Format.delimiter())
	}
	if m.Format.listSeparator() != "|" {
		t.Errorf("listSeparator = %q, want |", m.Format.listSeparator())
	}
}

func TestMandarinPinyin(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"中国", []string{"zhong1guo2", "zhongguo"}},
		{"侬", []string{"nong2", "nong"}},
		{"abc", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := MandarinPinyin(tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("MandarinPinyin(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
