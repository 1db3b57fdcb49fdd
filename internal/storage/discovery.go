package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the per-project data directory
	DirName = ".tk"
	// DBName is the database file inside DirName
	DBName = "tk.db"
	// EnvDBPath overrides discovery when set
	EnvDBPath = "TK_DB_PATH"
)

// DiscoverDatabase picks the database path:
//  1. $TK_DB_PATH if set (":memory:" allowed)
//  2. the nearest .tk/tk.db walking up from the working directory
//  3. ~/.tk/tk.db
func DiscoverDatabase() (string, error) {
	if dbPath := os.Getenv(EnvDBPath); dbPath != "" {
		return dbPath, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	if dbPath, ok := discoverDatabaseFromDir(dir); ok {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w\n"+
			"  Use --db to specify the database path explicitly", err)
	}
	return filepath.Join(home, DirName, DBName), nil
}

// discoverDatabaseFromDir walks up from startDir looking for .tk/tk.db
func discoverDatabaseFromDir(startDir string) (string, bool) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, DirName, DBName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			absPath, err := filepath.Abs(candidate)
			if err != nil {
				return candidate, true
			}
			return absPath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// GetProjectRoot returns the directory containing the .tk/ directory that
// holds dbPath
func GetProjectRoot(dbPath string) (string, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	dbDir := filepath.Dir(absPath)
	if filepath.Base(dbDir) != DirName {
		return "", fmt.Errorf("database must be in a %s/ directory, got: %s", DirName, dbPath)
	}
	return filepath.Dir(dbDir), nil
}

// InitProject creates projectDir/.tk and returns the database path that
// NewStorage will create on first open
func InitProject(projectDir string) (string, error) {
	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("project directory does not exist: %s", projectDir)
	}

	dataDir := filepath.Join(projectDir, DirName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", DirName, err)
	}

	dbPath := filepath.Join(dataDir, DBName)
	if _, err := os.Stat(dbPath); err == nil {
		return "", fmt.Errorf("database already exists: %s", dbPath)
	}

	// Keep the database out of version control
	ignore := filepath.Join(dataDir, ".gitignore")
	if err := os.WriteFile(ignore, []byte("*\n"), 0644); err != nil {
		return "", fmt.Errorf("failed to create .gitignore: %w", err)
	}
	return dbPath, nil
}
