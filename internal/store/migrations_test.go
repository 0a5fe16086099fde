package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/seed"
)

func sampleDataset(t *testing.T) seed.Dataset {
	t.Helper()
	sample, err := seed.Sample()
	require.NoError(t, err)
	return sample
}

func countByCategory(videos []model.Video) map[string]int {
	counts := make(map[string]int)
	for _, v := range videos {
		counts[v.CategoryID]++
	}
	return counts
}

func TestMigrationNames(t *testing.T) {
	assert.Equal(t, []string{
		"fix-mea-typo",
		"simplify-video-titles",
		"refresh-video-catalog",
		"add-play-category",
		"add-action-categories",
		"add-oldman-videos",
	}, MigrationNames())
}

func TestFixMeaTypo(t *testing.T) {
	tests := []struct {
		name        string
		set         catalogSet
		wantChanged bool
		wantVideos  []model.Video
	}{
		{
			name: "no videos key",
			set:  catalogSet{},
		},
		{
			name: "typo in filename and title",
			set: catalogSet{hasVideos: true, videos: []model.Video{
				{ID: "v1", Title: "Mea Eating", Filename: "mea_eat.mp4"},
				{ID: "v2", Title: "Dog Eating", Filename: "dog_eat.mp4"},
			}},
			wantChanged: true,
			wantVideos: []model.Video{
				{ID: "v1", Title: "Mia Eating", Filename: "mia_eat.mp4"},
				{ID: "v2", Title: "Dog Eating", Filename: "dog_eat.mp4"},
			},
		},
		{
			name: "typo in title only",
			set: catalogSet{hasVideos: true, videos: []model.Video{
				{ID: "v1", Title: "Mea Eating", Filename: "other.mp4"},
			}},
			wantChanged: true,
			wantVideos: []model.Video{
				{ID: "v1", Title: "Mia Eating", Filename: "mia_eat.mp4"},
			},
		},
		{
			name: "already fixed",
			set: catalogSet{hasVideos: true, videos: []model.Video{
				{ID: "v1", Title: "Mia Eating", Filename: "mia_eat.mp4"},
			}},
			wantVideos: []model.Video{
				{ID: "v1", Title: "Mia Eating", Filename: "mia_eat.mp4"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := tt.set
			got := fixMeaTypo(&set, seed.Dataset{})
			assert.Equal(t, tt.wantChanged, got)
			assert.Equal(t, tt.wantVideos, set.videos)
		})
	}
}

func TestSimplifyVideoTitles(t *testing.T) {
	set := catalogSet{hasVideos: true, videos: []model.Video{
		{ID: "eat_1", Title: "Dog Eating"},
		{ID: "draw_5", Title: "Woman Drawing"},
		{ID: "eat_6", Title: "Oldman"},
	}}

	assert.True(t, simplifyVideoTitles(&set, seed.Dataset{}))
	assert.Equal(t, []string{"Dog", "Woman", "Oldman"}, []string{set.videos[0].Title, set.videos[1].Title, set.videos[2].Title})
	assert.False(t, simplifyVideoTitles(&set, seed.Dataset{}), "simplified titles stay as they are")
}

func TestRefreshVideoCatalog(t *testing.T) {
	t.Run("replaces everything with the canonical videos", func(t *testing.T) {
		set := catalogSet{hasVideos: true, videos: []model.Video{{ID: "custom", CategoryID: "eat"}}}

		assert.True(t, refreshVideoCatalog(&set, seed.Dataset{}))
		assert.Equal(t, seed.CanonicalVideos(), set.videos)
		assert.Len(t, set.videos, 25)
	})

	t.Run("creates the videos key when absent", func(t *testing.T) {
		set := catalogSet{}

		assert.True(t, refreshVideoCatalog(&set, seed.Dataset{}))
		assert.True(t, set.hasVideos)
	})

	t.Run("canonical catalog is unchanged", func(t *testing.T) {
		set := catalogSet{hasVideos: true, videos: seed.CanonicalVideos()}
		assert.False(t, refreshVideoCatalog(&set, seed.Dataset{}))
	})
}

func TestAddPlayCategory(t *testing.T) {
	set := catalogSet{
		hasVideos:     true,
		videos:        seed.CanonicalVideos(),
		hasCategories: true,
		categories:    []model.Category{{ID: "eat", VideoCount: 5}},
	}

	assert.True(t, addPlayCategory(&set, seed.Dataset{}))
	assert.True(t, hasCategory(set.categories, "play"))
	assert.Equal(t, 5, countByCategory(set.videos)["play"])

	assert.False(t, addPlayCategory(&set, seed.Dataset{}), "second run finds play in place")
	assert.Len(t, set.categories, 2)

	absent := catalogSet{hasVideos: true, videos: seed.CanonicalVideos()}
	addPlayCategory(&absent, seed.Dataset{})
	assert.False(t, absent.hasCategories, "an absent categories key stays absent")
}

func TestAddActionCategories(t *testing.T) {
	sample := sampleDataset(t)
	set := catalogSet{
		hasVideos:     true,
		videos:        seed.CanonicalVideos(),
		hasCategories: true,
		categories:    []model.Category{{ID: "eat"}, {ID: "clap", Name: "Custom clap"}},
		hasQuestions:  true,
		questions:     sample.QuestionsFor("eat"),
	}

	assert.True(t, addActionCategories(&set, sample))

	ids := make([]string, 0, len(set.categories))
	for _, c := range set.categories {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"eat", "clap", "blow", "run", "wash"}, ids)
	assert.Equal(t, "Custom clap", set.categories[1].Name, "existing category is kept")

	counts := countByCategory(set.videos)
	for _, id := range []string{"blow", "clap", "run", "wash"} {
		assert.Equal(t, 5, counts[id], "videos of %s", id)
		assert.True(t, hasQuestionIn(set.questions, id), "questions of %s", id)
	}

	assert.False(t, addActionCategories(&set, sample))
}

func TestAddOldmanVideos(t *testing.T) {
	var videos []model.Video
	for _, action := range seed.AllActions() {
		videos = append(videos, action.CharacterVideos()...)
	}
	set := catalogSet{
		hasVideos:     true,
		videos:        videos,
		hasCategories: true,
		categories:    []model.Category{{ID: "eat", VideoCount: 5}, {ID: "blow", VideoCount: 6}},
	}

	assert.True(t, addOldmanVideos(&set, seed.Dataset{}))
	for id, count := range countByCategory(set.videos) {
		assert.Equal(t, 6, count, "videos of %s", id)
	}
	assert.Equal(t, model.Video{
		ID:         "eat_6",
		CategoryID: "eat",
		Title:      "Oldman",
		Filename:   "Eat/oldman_eating.mp4",
		Duration:   5,
		Order:      6,
	}, set.videos[len(videos)])
	assert.Equal(t, 6, set.categories[0].VideoCount)
	assert.Equal(t, 6, set.categories[1].VideoCount)

	assert.False(t, addOldmanVideos(&set, seed.Dataset{}))
	assert.Len(t, set.videos, len(videos)+10)
}

func TestChangedCollections(t *testing.T) {
	set := &catalogSet{
		hasVideos:     true,
		videos:        []model.Video{},
		hasCategories: true,
		categories:    []model.Category{{ID: "eat"}},
	}
	original := map[string][]byte{
		keyVideos:     []byte(`[]`),
		keyCategories: []byte(`[]`),
	}

	got, err := changedCollections(set, original)
	require.NoError(t, err)
	assert.NotContains(t, got, keyVideos)
	assert.NotContains(t, got, keyQuestions)
	require.Contains(t, got, keyCategories)
	assert.JSONEq(t, `[{"id":"eat","name":"","description":"","icon":"","videoCount":0,"unlocked":false}]`, string(got[keyCategories]))
}
