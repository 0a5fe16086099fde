package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/seed"
)

// catalogSet is the part of the store the migrations rewrite. A collection
// whose key is absent stays absent unless a step creates it.
type catalogSet struct {
	videos        []model.Video
	hasVideos     bool
	categories    []model.Category
	hasCategories bool
	questions     []model.Question
	hasQuestions  bool
}

// migration steps must each check their own guard, so running the whole
// list again is a no-op.
type migration struct {
	name  string
	apply func(set *catalogSet, sample seed.Dataset) bool
}

// migrations is append-only. Stores frozen at any older version replay
// the full list.
var migrations = []migration{
	{name: "fix-mea-typo", apply: fixMeaTypo},
	{name: "simplify-video-titles", apply: simplifyVideoTitles},
	{name: "refresh-video-catalog", apply: refreshVideoCatalog},
	{name: "add-play-category", apply: addPlayCategory},
	{name: "add-action-categories", apply: addActionCategories},
	{name: "add-oldman-videos", apply: addOldmanVideos},
}

// MigrationResult reports whether a step left a net change in the stored
// collections.
type MigrationResult struct {
	Name    string
	Changed bool
}

// MigrationNames lists the steps in execution order.
func MigrationNames() []string {
	names := make([]string, 0, len(migrations))
	for _, m := range migrations {
		names = append(names, m.name)
	}
	return names
}

func fixMeaTypo(set *catalogSet, _ seed.Dataset) bool {
	if !set.hasVideos {
		return false
	}
	changed := false
	for i := range set.videos {
		v := &set.videos[i]
		if v.Filename == "mea_eat.mp4" || v.Title == "Mea Eating" {
			if v.Filename != "mia_eat.mp4" || v.Title != "Mia Eating" {
				changed = true
			}
			v.Filename = "mia_eat.mp4"
			v.Title = "Mia Eating"
		}
	}
	return changed
}

func simplifyVideoTitles(set *catalogSet, _ seed.Dataset) bool {
	if !set.hasVideos {
		return false
	}
	mappings := seed.TitleSimplifications()
	changed := false
	for i := range set.videos {
		if title, ok := mappings[set.videos[i].Title]; ok {
			set.videos[i].Title = title
			changed = true
		}
	}
	return changed
}

// refreshVideoCatalog drops every video and writes the canonical five
// categories. The later steps add the remaining categories back.
func refreshVideoCatalog(set *catalogSet, _ seed.Dataset) bool {
	canonical := seed.CanonicalVideos()
	changed := !set.hasVideos || !slices.Equal(set.videos, canonical)
	set.videos = canonical
	set.hasVideos = true
	return changed
}

func hasCategory(categories []model.Category, id string) bool {
	return slices.ContainsFunc(categories, func(c model.Category) bool { return c.ID == id })
}

func hasVideoIn(videos []model.Video, categoryID string) bool {
	return slices.ContainsFunc(videos, func(v model.Video) bool { return v.CategoryID == categoryID })
}

func hasQuestionIn(questions []model.Question, categoryID string) bool {
	return slices.ContainsFunc(questions, func(q model.Question) bool { return q.CategoryID == categoryID })
}

func addPlayCategory(set *catalogSet, _ seed.Dataset) bool {
	changed := false
	if set.hasCategories && !hasCategory(set.categories, seed.PlayAction.CategoryID) {
		set.categories = append(set.categories, seed.PlayCategory())
		changed = true
	}
	if set.hasVideos && !hasVideoIn(set.videos, seed.PlayAction.CategoryID) {
		set.videos = append(set.videos, seed.PlayAction.CharacterVideos()...)
		changed = true
	}
	return changed
}

// addActionCategories guards every category, video group and question
// group on its own.
func addActionCategories(set *catalogSet, sample seed.Dataset) bool {
	changed := false
	if set.hasCategories {
		for _, action := range seed.LaterActions {
			if !hasCategory(set.categories, action.CategoryID) {
				set.categories = append(set.categories, action.LaterCategory())
				changed = true
			}
		}
	}
	if set.hasVideos {
		var added []model.Video
		for _, action := range seed.LaterActions {
			if !hasVideoIn(set.videos, action.CategoryID) {
				added = append(added, action.CharacterVideos()...)
			}
		}
		if len(added) > 0 {
			set.videos = append(set.videos, added...)
			changed = true
		}
	}
	if set.hasQuestions {
		var added []model.Question
		for _, action := range seed.LaterActions {
			if !hasQuestionIn(set.questions, action.CategoryID) {
				added = append(added, sample.QuestionsFor(action.CategoryID)...)
			}
		}
		if len(added) > 0 {
			set.questions = append(set.questions, added...)
			changed = true
		}
	}
	return changed
}

func addOldmanVideos(set *catalogSet, _ seed.Dataset) bool {
	changed := false
	if set.hasVideos && !slices.ContainsFunc(set.videos, seed.IsOldman) {
		for _, action := range seed.AllActions() {
			set.videos = append(set.videos, action.OldmanVideo())
		}
		changed = true
	}
	if set.hasCategories {
		for i := range set.categories {
			if set.categories[i].VideoCount == 5 {
				set.categories[i].VideoCount = 6
				changed = true
			}
		}
	}
	return changed
}

func (s *Store) loadCatalogSet(ctx context.Context) (*catalogSet, map[string][]byte, error) {
	original := make(map[string][]byte)
	for _, key := range []string{keyVideos, keyCategories, keyQuestions} {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, nil, fmt.Errorf("kv.Get(%s) > %w", key, err)
		}
		if ok {
			original[key] = raw
		}
	}

	set := &catalogSet{}
	set.videos, set.hasVideos = decodeJSON[[]model.Video](keyVideos, original[keyVideos])
	set.categories, set.hasCategories = decodeJSON[[]model.Category](keyCategories, original[keyCategories])
	set.questions, set.hasQuestions = decodeJSON[[]model.Question](keyQuestions, original[keyQuestions])
	return set, original, nil
}

// changedCollections serializes the present collections and keeps only
// those whose bytes differ from what was loaded.
// encode marshals the collections that are present.
func (set *catalogSet) encode() (map[string][]byte, error) {
	collections := []struct {
		key     string
		present bool
		value   any
	}{
		{keyVideos, set.hasVideos, set.videos},
		{keyCategories, set.hasCategories, set.categories},
		{keyQuestions, set.hasQuestions, set.questions},
	}
	encoded := make(map[string][]byte, len(collections))
	for _, c := range collections {
		if !c.present {
			continue
		}
		data, err := json.Marshal(c.value)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal(%s) > %w", c.key, err)
		}
		encoded[c.key] = data
	}
	return encoded, nil
}

func changedCollections(set *catalogSet, original map[string][]byte) (map[string][]byte, error) {
	encoded, err := set.encode()
	if err != nil {
		return nil, err
	}
	entries := make(map[string][]byte)
	for key, data := range encoded {
		if raw, ok := original[key]; ok && bytes.Equal(raw, data) {
			continue
		}
		entries[key] = data
	}
	return entries, nil
}

// touchedKeys lists the collections whose encoding differs between two
// snapshots of the working set.
func touchedKeys(before, after map[string][]byte) []string {
	var keys []string
	for _, key := range []string{keyVideos, keyCategories, keyQuestions} {
		b, inBefore := before[key]
		a, inAfter := after[key]
		if inBefore != inAfter || !bytes.Equal(b, a) {
			keys = append(keys, key)
		}
	}
	return keys
}

// runMigrations applies every step in order against one in-memory copy and
// writes the changed collections in a single batch.
func (s *Store) runMigrations(ctx context.Context) ([]MigrationResult, error) {
	sample, err := seed.Load(s.seedFile)
	if err != nil {
		return nil, fmt.Errorf("seed.Load() > %w", err)
	}
	set, original, err := s.loadCatalogSet(ctx)
	if err != nil {
		return nil, err
	}

	before, err := set.encode()
	if err != nil {
		return nil, err
	}
	touched := make([][]string, len(migrations))
	fired := make([]bool, len(migrations))
	for i, m := range migrations {
		fired[i] = m.apply(set, sample)
		after, err := set.encode()
		if err != nil {
			return nil, err
		}
		touched[i] = touchedKeys(before, after)
		before = after
	}

	entries, err := changedCollections(set, original)
	if err != nil {
		return nil, err
	}

	// A step only counts as changed when a collection it rewrote differs
	// from what was stored. Steps that undo each other leave nothing to write.
	results := make([]MigrationResult, 0, len(migrations))
	for i, m := range migrations {
		changed := slices.ContainsFunc(touched[i], func(key string) bool {
			_, ok := entries[key]
			return ok
		})
		slog.Info("schema migration", "step", m.name, "guard", fired[i], "changed", changed)
		results = append(results, MigrationResult{Name: m.name, Changed: changed})
	}
	if len(entries) == 0 {
		return results, nil
	}
	if err := s.kv.SetMany(ctx, entries); err != nil {
		return nil, fmt.Errorf("kv.SetMany() > %w", err)
	}
	return results, nil
}
