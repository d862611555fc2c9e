package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/adrg/xdg"
)

// Database file names inside a profile directory.
const (
	// PlacesFile holds moz_places and moz_historyvisits.
	PlacesFile = "places.sqlite"

	// FormHistoryFile holds moz_formhistory.
	FormHistoryFile = "formhistory.sqlite"
)

var (
	// ErrNoProfile is returned when no profile was given and none was found.
	ErrNoProfile = errors.New("no Firefox profile found: use --profile or --places and --formhistory")

	// ErrMissingDatabase is returned when a profile lacks one of its databases.
	ErrMissingDatabase = errors.New("history database missing")
)

// platformDir holds platform-detection values that can be overridden in tests.
var platformDir = struct {
	goos    string
	homeDir func() string
	appData func() string
}{
	goos:    runtime.GOOS,
	homeDir: func() string { return xdg.Home },
	appData: func() string { return os.Getenv("APPDATA") },
}

// Profile is a Firefox profile directory and its history databases.
type Profile struct {
	// Name is the directory name, e.g. "abcd1234.default-release".
	Name string

	// Dir is the profile directory. Empty when the databases were given as files.
	Dir string

	// PlacesPath is the path of places.sqlite.
	PlacesPath string

	// FormHistoryPath is the path of formhistory.sqlite.
	FormHistoryPath string

	// LastUsed is the modification time of places.sqlite.
	LastUsed time.Time
}

// Roots returns the directories Firefox keeps profiles in on this platform.
func Roots() []string {
	home := platformDir.homeDir()

	switch platformDir.goos {
	case "darwin":
		return []string{
			filepath.Join(home, "Library", "Application Support", "Firefox", "Profiles"),
		}
	case "windows":
		appData := platformDir.appData()
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return []string{
			filepath.Join(appData, "Mozilla", "Firefox", "Profiles"),
		}
	default:
		return []string{
			filepath.Join(home, ".mozilla", "firefox"),
			filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox"),
		}
	}
}

// Locator finds profiles below a set of root directories.
type Locator struct {
	roots []string
}

// Option configures a Locator.
type Option func(*Locator)

// WithRoots replaces the platform profile roots.
func WithRoots(roots ...string) Option {
	return func(l *Locator) {
		l.roots = roots
	}
}

// NewLocator creates a Locator over the platform profile roots.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{}

	for _, opt := range opts {
		opt(l)
	}

	if l.roots == nil {
		l.roots = Roots()
	}

	return l
}

// Roots returns the directories the locator searches.
func (l *Locator) Roots() []string {
	return l.roots
}

// Discover returns every profile below the roots that holds both
// databases, most recently used first. Missing roots are skipped.
func (l *Locator) Discover() ([]Profile, error) {
	profiles := make([]Profile, 0)

	for _, root := range l.roots {
		entries, err := os.ReadDir(root)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read profile root %s: %w", root, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			p, err := Load(filepath.Join(root, entry.Name()))
			if err != nil {
				continue
			}
			profiles = append(profiles, p)
		}
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		if !profiles[i].LastUsed.Equal(profiles[j].LastUsed) {
			return profiles[i].LastUsed.After(profiles[j].LastUsed)
		}
		return profiles[i].Dir < profiles[j].Dir
	})

	return profiles, nil
}

// Resolve picks the databases to read.
//
// Explicit database paths win; when only one is given the other is looked
// for next to it. Otherwise an explicit profile directory is used, and
// without one the most recently used discovered profile.
func (l *Locator) Resolve(dir, placesPath, formHistoryPath string) (Profile, error) {
	switch {
	case placesPath != "" || formHistoryPath != "":
		return fromFiles(dir, placesPath, formHistoryPath)
	case dir != "":
		return Load(dir)
	}

	profiles, err := l.Discover()
	if err != nil {
		return Profile{}, err
	}
	if len(profiles) == 0 {
		return Profile{}, ErrNoProfile
	}
	return profiles[0], nil
}

// Load reads the profile in dir. Both databases must exist.
func Load(dir string) (Profile, error) {
	p := Profile{
		Name:            filepath.Base(dir),
		Dir:             dir,
		PlacesPath:      filepath.Join(dir, PlacesFile),
		FormHistoryPath: filepath.Join(dir, FormHistoryFile),
	}
	err := p.stat()
	return p, err
}

// fromFiles builds a profile from explicit database paths.
func fromFiles(dir, placesPath, formHistoryPath string) (Profile, error) {
	if placesPath == "" {
		placesPath = siblingPath(dir, formHistoryPath, PlacesFile)
	}
	if formHistoryPath == "" {
		formHistoryPath = siblingPath(dir, placesPath, FormHistoryFile)
	}

	p := Profile{
		Name:            filepath.Base(filepath.Dir(placesPath)),
		PlacesPath:      placesPath,
		FormHistoryPath: formHistoryPath,
	}
	err := p.stat()
	return p, err
}

// siblingPath returns name inside dir, or next to other when dir is empty.
func siblingPath(dir, other, name string) string {
	if dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(filepath.Dir(other), name)
}

// stat checks both databases exist and records LastUsed.
func (p *Profile) stat() error {
	info, err := os.Stat(p.PlacesPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMissingDatabase, p.PlacesPath)
	}
	p.LastUsed = info.ModTime()

	if _, err := os.Stat(p.FormHistoryPath); err != nil {
		return fmt.Errorf("%w: %s", ErrMissingDatabase, p.FormHistoryPath)
	}
	return nil
}
