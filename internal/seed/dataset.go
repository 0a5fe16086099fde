// Package seed holds the built-in sample dataset and the catalog entries
// the schema migrations add to older stores.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/littlesteps/internal/model"
)

//go:embed sample.yml
var sampleYAML []byte

// Dataset is the content written into a fresh store.
type Dataset struct {
	Teachers   []model.Teacher  `yaml:"teachers"`
	Students   []model.Student  `yaml:"students"`
	Categories []model.Category `yaml:"categories"`
	Videos     []model.Video    `yaml:"videos"`
	Questions  []model.Question `yaml:"questions"`
}

// Load returns the dataset read from path, or the embedded sample when path is empty.
func Load(path string) (Dataset, error) {
	if path == "" {
		return Sample()
	}
	dataset, err := readYamlFile[Dataset](path)
	if err != nil {
		return Dataset{}, fmt.Errorf("readYamlFile(%s) > %w", path, err)
	}
	if err := dataset.Validate(); err != nil {
		return Dataset{}, fmt.Errorf("invalid dataset %s: %w", path, err)
	}
	return dataset, nil
}

func Sample() (Dataset, error) {
	var dataset Dataset
	if err := yaml.NewDecoder(bytes.NewReader(sampleYAML)).Decode(&dataset); err != nil {
		return Dataset{}, fmt.Errorf("yaml.NewDecoder().Decode() > %w", err)
	}
	return dataset, nil
}

// Users returns teachers followed by students.
func (d Dataset) Users() model.Users {
	users := make(model.Users, 0, len(d.Teachers)+len(d.Students))
	for i := range d.Teachers {
		t := d.Teachers[i]
		if t.Students == nil {
			t.Students = []string{}
		}
		users = append(users, &t)
	}
	for i := range d.Students {
		s := d.Students[i]
		users = append(users, &s)
	}
	return users
}

// QuestionsFor returns the dataset questions of one category.
func (d Dataset) QuestionsFor(categoryID string) []model.Question {
	var questions []model.Question
	for _, q := range d.Questions {
		if q.CategoryID == categoryID {
			questions = append(questions, q)
		}
	}
	return questions
}

// Validate checks ids are unique and every reference inside the dataset resolves.
func (d Dataset) Validate() error {
	userIDs := make(map[string]bool)
	for _, t := range d.Teachers {
		if userIDs[t.ID] {
			return fmt.Errorf("duplicate user id %q", t.ID)
		}
		userIDs[t.ID] = true
	}
	for _, s := range d.Students {
		if userIDs[s.ID] {
			return fmt.Errorf("duplicate user id %q", s.ID)
		}
		userIDs[s.ID] = true
	}

	categoryIDs := make(map[string]bool)
	for _, c := range d.Categories {
		if categoryIDs[c.ID] {
			return fmt.Errorf("duplicate category id %q", c.ID)
		}
		categoryIDs[c.ID] = true
	}

	videoIDs := make(map[string]bool)
	for _, v := range d.Videos {
		if videoIDs[v.ID] {
			return fmt.Errorf("duplicate video id %q", v.ID)
		}
		if !categoryIDs[v.CategoryID] {
			return fmt.Errorf("video %s references unknown category %q", v.ID, v.CategoryID)
		}
		videoIDs[v.ID] = true
	}

	for _, q := range d.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if !categoryIDs[q.CategoryID] {
			return fmt.Errorf("question %s references unknown category %q", q.ID, q.CategoryID)
		}
	}
	return nil
}

// Export writes the dataset as YAML so it can be edited and used as seed.file.
func (d Dataset) Export(path string) error {
	if err := WriteYamlFile(path, d); err != nil {
		return fmt.Errorf("WriteYamlFile(%s) > %w", path, err)
	}
	return nil
}

func readYamlFile[T any](path string) (T, error) {
	var result T

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("os.Open(%s)> %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&result); err != nil {
		return result, fmt.Errorf("yaml.NewDecoder().Decode()> %w", err)
	}
	return result, nil
}

func WriteYamlFile[T any](path string, data T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s)> %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	return yaml.NewEncoder(file).Encode(data)
}
