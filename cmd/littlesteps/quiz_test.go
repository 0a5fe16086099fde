package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuizCommand(t *testing.T) {
	cmd := newQuizCommand()

	assert.Equal(t, "quiz", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	flag := cmd.Flags().Lookup("questions")
	require.NotNil(t, flag)
	assert.Equal(t, "5", flag.DefValue)
}

func TestNewQuizCommand_RunE(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		input     string
		wantScore string
		wantCount int
	}{
		{
			name:      "question count from the config",
			input:     "1\n2\n3\n",
			wantScore: "of 3 right!",
			wantCount: 3,
		},
		{
			name:      "question count from the flag",
			args:      []string{"--questions", "2"},
			input:     "1\n1\n",
			wantScore: "of 2 right!",
			wantCount: 2,
		},
		{
			name:      "input ends early",
			args:      []string{"--questions", "4"},
			input:     "2\n",
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupStore(t)
			mustExecute(t, newStudentSelectCommand, "student_2")

			out, err := execute(t, newQuizCommand, tt.input, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, "Hi Emma! Answer with the number of the action.")
			if tt.wantScore != "" {
				assert.Contains(t, out, tt.wantScore)
			}

			ctx := context.Background()
			s, _, err := openStore(ctx)
			require.NoError(t, err)
			defer func() {
				_ = s.Close()
			}()
			progress, err := s.GetUserProgress(ctx, "student_2", "")
			require.NoError(t, err)
			count := 0
			for _, p := range progress {
				count += len(p.QuizAttempts)
			}
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestNewQuizCommand_Errors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		setConfigFile(t, setupBrokenConfigFile(t))
		_, err := execute(t, newQuizCommand, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration")
	})

	t.Run("nobody signed in", func(t *testing.T) {
		setupStore(t)
		_, err := execute(t, newQuizCommand, "1\n")
		assert.ErrorIs(t, err, errNobodySignedIn)
	})
}
