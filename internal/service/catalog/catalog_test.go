package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

const moviesJSON = `{
  "98": {
    "title": "Gladiator",
    "title_bg": "Гладиатор",
    "year": 2000,
    "tmdb_id": 98,
    "poster_path": "/gladiator.jpg",
    "overview": "Римският генерал Максимус."
  },
  "9587": {
    "title": "Little Women",
    "title_bg": "Малки жени",
    "year": 1994,
    "tmdb_id": 9587
  },
  "331482": {
    "title": "Little Women",
    "title_bg": "Малки жени",
    "year": 2019,
    "tmdb_id": 331482
  },
  "555": {
    "title": "No Oscars Here",
    "title_bg": "Без отличия",
    "year": 2010,
    "tmdb_id": 555
  }
}`

const oscarsJSON = `{
  "2001": {
    "BEST PICTURE": {
      "winner": { "id": "98" },
      "nominees": [{ "id": "98" }]
    },
    "DIRECTING": {
      "winner": null,
      "nominees": [{ "id": "98" }]
    }
  },
  "1995": {
    "ACTRESS IN A LEADING ROLE": {
      "winner": null,
      "nominees": [{ "id": "9587" }]
    }
  },
  "2020": {
    "COSTUME DESIGN": {
      "winner": { "id": "331482" },
      "nominees": [{ "id": "331482" }]
    }
  }
}`

func writeTestCatalog(t *testing.T) (moviesPath, oscarsPath string) {
	t.Helper()
	dir := t.TempDir()
	moviesPath = filepath.Join(dir, "movies-min.json")
	oscarsPath = filepath.Join(dir, "oscars-min.json")
	if err := os.WriteFile(moviesPath, []byte(moviesJSON), 0o644); err != nil {
		t.Fatalf("write movies: %v", err)
	}
	if err := os.WriteFile(oscarsPath, []byte(oscarsJSON), 0o644); err != nil {
		t.Fatalf("write oscars: %v", err)
	}
	return moviesPath, oscarsPath
}

func TestLoad(t *testing.T) {
	moviesPath, oscarsPath := writeTestCatalog(t)

	c, err := Load(moviesPath, oscarsPath, zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// The movie without any ceremony outcome is dropped.
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
	if got := c.Lookup("без отличия"); got != nil {
		t.Errorf("oscar-less movie indexed: %+v", got)
	}
}

func TestLookupBothTitles(t *testing.T) {
	moviesPath, oscarsPath := writeTestCatalog(t)
	c, err := Load(moviesPath, oscarsPath, zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, key := range []string{"гладиатор", "gladiator"} {
		entries := c.Lookup(key)
		if len(entries) != 1 {
			t.Fatalf("Lookup(%q) = %d entries, want 1", key, len(entries))
		}
		e := entries[0]
		if e.WinnerCount() != 1 {
			t.Errorf("winner count = %d, want 1", e.WinnerCount())
		}
		// A winner is also a nominee of that category, plus the lost one.
		if e.NomineeCount() != 2 {
			t.Errorf("nominee count = %d, want 2", e.NomineeCount())
		}
	}
}

func TestLookupOrdersByYear(t *testing.T) {
	moviesPath, oscarsPath := writeTestCatalog(t)
	c, err := Load(moviesPath, oscarsPath, zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	entries := c.Lookup("малки жени")
	if len(entries) != 2 {
		t.Fatalf("Lookup = %d entries, want 2", len(entries))
	}
	if entries[0].Year != 1994 || entries[1].Year != 2019 {
		t.Errorf("years = %d, %d; want 1994, 2019", entries[0].Year, entries[1].Year)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	moviesPath, oscarsPath := writeTestCatalog(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.json"), oscarsPath, zap.NewNop()); err == nil {
		t.Error("Load succeeded with missing movies file")
	}
	if _, err := Load(moviesPath, filepath.Join(t.TempDir(), "absent.json"), zap.NewNop()); err == nil {
		t.Error("Load succeeded with missing oscars file")
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, oscarsPath := writeTestCatalog(t)

	if _, err := Load(bad, oscarsPath, zap.NewNop()); err == nil {
		t.Error("Load succeeded with malformed movies file")
	}
}
