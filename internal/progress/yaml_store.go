package progress

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/wordcoach/internal/srs"
)

const yamlFilePrefix = "user_"

// userProgressFile is the YAML document kept for each user.
type userProgressFile struct {
	UserID int64        `yaml:"user_id"`
	Words  []srs.Record `yaml:"words"`
}

// YAMLStore keeps each user's progress in <directory>/user_<id>.yml.
// It is safe for use by one process at a time.
type YAMLStore struct {
	mu        sync.Mutex
	directory string
}

func NewYAMLStore(directory string) *YAMLStore {
	return &YAMLStore{directory: directory}
}

func (s *YAMLStore) Get(_ context.Context, userID, wordID int64) (*srs.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	for _, r := range file.Words {
		if r.WordID == wordID {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *YAMLStore) Put(_ context.Context, record srs.Record) (srs.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(record.UserID)
	if err != nil {
		return srs.Record{}, err
	}

	index := -1
	for i, r := range file.Words {
		if r.WordID == record.WordID {
			index = i
			break
		}
	}
	switch {
	case record.Version == 0 && index >= 0:
		return srs.Record{}, ErrConflict
	case record.Version != 0 && (index < 0 || file.Words[index].Version != record.Version):
		return srs.Record{}, ErrConflict
	}

	record.Version++
	if index >= 0 {
		file.Words[index] = record
	} else {
		file.Words = append(file.Words, record)
	}
	sort.Slice(file.Words, func(i, j int) bool {
		return file.Words[i].WordID < file.Words[j].WordID
	})

	if err := s.save(file); err != nil {
		return srs.Record{}, err
	}
	return record, nil
}

func (s *YAMLStore) ListDue(_ context.Context, userID int64, now time.Time, limit int) ([]srs.Record, error) {
	s.mu.Lock()
	file, err := s.load(userID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	due := srs.DueRecords(file.Words, now)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *YAMLStore) CountDueByUser(_ context.Context, now time.Time) (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.directory)
	if errors.Is(err, fs.ErrNotExist) {
		return map[int64]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadDir(%s) > %w", s.directory, err)
	}

	counts := make(map[int64]int)
	for _, e := range entries {
		userID, ok := userIDFromFileName(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		file, err := s.load(userID)
		if err != nil {
			return nil, err
		}
		for _, r := range file.Words {
			if srs.IsDue(r, now) {
				counts[userID]++
			}
		}
	}
	return counts, nil
}

func (s *YAMLStore) path(userID int64) string {
	return filepath.Join(s.directory, fmt.Sprintf("%s%d.yml", yamlFilePrefix, userID))
}

func userIDFromFileName(name string) (int64, bool) {
	if !strings.HasPrefix(name, yamlFilePrefix) || !strings.HasSuffix(name, ".yml") {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, yamlFilePrefix), ".yml"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *YAMLStore) load(userID int64) (userProgressFile, error) {
	path := s.path(userID)
	file, err := readYamlFile[userProgressFile](path)
	if errors.Is(err, fs.ErrNotExist) {
		return userProgressFile{UserID: userID}, nil
	}
	if err != nil {
		return userProgressFile{}, err
	}
	file.UserID = userID
	return file, nil
}

// save writes through a temporary file so a crash never leaves a truncated document.
func (s *YAMLStore) save(file userProgressFile) error {
	if err := os.MkdirAll(s.directory, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", s.directory, err)
	}

	path := s.path(file.UserID)
	tmp := path + ".tmp"
	if err := writeYamlFile(tmp, file); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("os.Rename(%s) > %w", tmp, err)
	}
	return nil
}

func readYamlFile[T any](path string) (T, error) {
	var result T

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&result); err != nil {
		return result, fmt.Errorf("yaml.NewDecoder().Decode(%s) > %w", path, err)
	}
	return result, nil
}

func writeYamlFile[T any](path string, data T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	enc := yaml.NewEncoder(file)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("yaml.NewEncoder().Encode(%s) > %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("yaml.Encoder.Close(%s) > %w", path, err)
	}
	return nil
}
