package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/littlesteps/internal/kvstore"
	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/seed"
)

// writeLegacyStore fills kv the way the first release left it: five
// categories of five videos with "Character Action" titles, the Mea typo and
// questions only for the original categories.
func writeLegacyStore(t *testing.T, kv kvstore.Storage, version string) {
	t.Helper()

	var videos []model.Video
	var categories []model.Category
	for _, action := range seed.OriginalActions {
		categories = append(categories, model.Category{
			ID:          action.CategoryID,
			Name:        action.Folder,
			Description: fmt.Sprintf("Learn about %s actions", action.Gerund),
			Icon:        "star",
			VideoCount:  5,
			Unlocked:    true,
		})
		verb := map[string]string{
			"eat": "Eating", "drink": "Drinking", "sleep": "Sleeping", "open": "Opening", "draw": "Drawing",
		}[action.CategoryID]
		for i, character := range seed.Characters {
			v := action.Video(character, i+1)
			v.Title = character + " " + verb
			videos = append(videos, v)
		}
	}
	videos = append(videos, model.Video{
		ID: "eat_extra", CategoryID: "eat", Title: "Mea Eating", Filename: "mea_eat.mp4", Duration: 5, Order: 9,
	})

	sample, err := seed.Sample()
	require.NoError(t, err)
	var questions []model.Question
	for _, action := range seed.OriginalActions {
		questions = append(questions, sample.QuestionsFor(action.CategoryID)...)
	}

	putJSON(t, kv, keyUsers, sample.Users())
	putJSON(t, kv, keyCategories, categories)
	putJSON(t, kv, keyVideos, videos)
	putJSON(t, kv, keyQuestions, questions)
	putJSON(t, kv, keyProgress, []model.UserProgress{})
	putJSON(t, kv, keyAppInitialized, true)
	if version != "" {
		require.NoError(t, kv.Set(context.Background(), keyAppVersion, []byte(version)))
	}
}

func TestStore_Initialize_Fresh(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	users, err := s.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users.Teachers(), 1)
	assert.Len(t, users.Students(), 3)

	categories, err := s.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 10)

	progress, err := s.GetAllProgress(ctx)
	require.NoError(t, err)
	assert.Empty(t, progress)
	assert.JSONEq(t, `[]`, string(rawValue(t, kv, keyProgress)))
	assert.JSONEq(t, `true`, string(rawValue(t, kv, keyAppInitialized)))

	version, err := s.StoredVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)

	report, err := s.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK(), "errors: %v", report.Errors)

	current, err := s.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestStore_Initialize_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	_, err := s.AddStudent(ctx, NewStudent{FirstName: "Lily", LastName: "Chen", TeacherID: "teacher_1"})
	require.NoError(t, err)
	before := rawValue(t, kv, keyUsers)

	require.NoError(t, s.Initialize(ctx))
	assert.Equal(t, before, rawValue(t, kv, keyUsers), "initialized store must not be reseeded")
}

func TestStore_Initialize_HashesSeedPasswords(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithPasswordHashing(4))

	teacher, err := s.GetTeacher(ctx, "teacher_1")
	require.NoError(t, err)
	assert.NotEqual(t, "demo123", teacher.Password)
	assert.True(t, isBcryptHash(teacher.Password))

	ok, err := s.AuthenticateTeacher(ctx, "teacher_1", "demo123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_Initialize_UpgradesLegacyStore(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStorage()
	writeLegacyStore(t, kv, "1")
	s := New(kv)

	require.NoError(t, s.Initialize(ctx))

	version, err := s.StoredVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)

	categories, err := s.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 10)
	for _, c := range categories {
		assert.Equal(t, 6, c.VideoCount, "category %s", c.ID)

		videos, err := s.GetVideosByCategory(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, videos, 6, "category %s", c.ID)
		assert.Equal(t, "Dog", videos[0].Title)
		assert.Equal(t, "Oldman", videos[5].Title)
		assert.Equal(t, 6, videos[5].Order)
	}

	stored, _, err := readJSON[[]model.Category](ctx, kv, keyCategories)
	require.NoError(t, err)
	for _, c := range stored {
		assert.Equal(t, 6, c.VideoCount, "persisted count of %s", c.ID)
	}

	_, err = s.GetVideo(ctx, "eat_extra")
	assert.ErrorIs(t, err, ErrNotFound, "refresh drops videos outside the canonical catalog")

	blow, err := s.GetQuestionsByCategory(ctx, "blow")
	require.NoError(t, err)
	assert.Len(t, blow, 2)

	report, err := s.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK(), "errors: %v", report.Errors)
}

func TestStore_RunMigrations_SecondRunKeepsBytes(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStorage()
	writeLegacyStore(t, kv, "9")
	s := New(kv)

	first, err := s.EnsureSeedUpToDate(ctx)
	require.NoError(t, err)
	require.Len(t, first, len(migrations))

	snapshot := make(map[string][]byte)
	for _, key := range kv.Keys() {
		snapshot[key] = rawValue(t, kv, key)
	}

	assert.True(t, first[0].Changed, "the legacy store still has the mea typo")

	second, err := s.RunMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, second, len(migrations))
	for _, result := range second {
		assert.False(t, result.Changed, "step %s", result.Name)
	}
	for _, key := range kv.Keys() {
		assert.Equal(t, string(snapshot[key]), string(rawValue(t, kv, key)), "key %s", key)
	}
	assert.ElementsMatch(t, mapsKeys(snapshot), kv.Keys())

	again, err := s.EnsureSeedUpToDate(ctx)
	require.NoError(t, err)
	assert.Nil(t, again, "a current store runs no migration")
}

func TestStore_RunMigrations_FreshStoreReportsNoChange(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	results, err := s.RunMigrations(ctx)
	require.NoError(t, err)
	for _, result := range results {
		assert.False(t, result.Changed, "step %s", result.Name)
	}
}

func TestTouchedKeys(t *testing.T) {
	before := map[string][]byte{keyVideos: []byte(`[1]`), keyCategories: []byte(`[]`)}
	tests := []struct {
		name  string
		after map[string][]byte
		want  []string
	}{
		{name: "same bytes", after: map[string][]byte{keyVideos: []byte(`[1]`), keyCategories: []byte(`[]`)}},
		{name: "rewritten", after: map[string][]byte{keyVideos: []byte(`[2]`), keyCategories: []byte(`[]`)}, want: []string{keyVideos}},
		{name: "created and removed", after: map[string][]byte{keyVideos: []byte(`[1]`), keyQuestions: []byte(`[]`)}, want: []string{keyCategories, keyQuestions}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, touchedKeys(before, tt.after))
		})
	}
}

func mapsKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestStore_StoredVersion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "no version", want: ""},
		{name: "JSON string", raw: `"10"`, want: "10"},
		{name: "bare number", raw: `10`, want: "10"},
		{name: "older bare number", raw: "9\n", want: "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := kvstore.NewMemoryStorage()
			if tt.raw != "" {
				require.NoError(t, kv.Set(context.Background(), keyAppVersion, []byte(tt.raw)))
			}

			got, err := New(kv).StoredVersion(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_Initialize_BareVersionIsCurrent(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStorage()
	writeLegacyStore(t, kv, "10")
	before := rawValue(t, kv, keyVideos)

	require.NoError(t, New(kv).Initialize(ctx))
	assert.Equal(t, before, rawValue(t, kv, keyVideos))
}

func TestStore_ClearAllData(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestStore(t)

	_, err := s.AddStudent(ctx, NewStudent{FirstName: "Lily", LastName: "Chen", TeacherID: "teacher_1"})
	require.NoError(t, err)
	_, err = s.LoginTeacher(ctx, "teacher_1", "demo123")
	require.NoError(t, err)
	require.NoError(t, s.AddQuizAttempt(ctx, "student_1", "eat", model.QuizAttempt{ID: "a1", QuestionID: "q_eat_1"}))

	require.NoError(t, s.ClearAllData(ctx))

	users, err := s.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)

	progress, err := s.GetAllProgress(ctx)
	require.NoError(t, err)
	assert.Empty(t, progress)

	for _, key := range []string{keyCurrentUser, keyCurrentTeacher} {
		_, ok, err := kv.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, "%s should be removed", key)
	}
}
