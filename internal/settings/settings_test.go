package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s := NewStore(t.TempDir(), zap.NewNop())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestSaveThenLoad(t *testing.T) {
	s := NewStore(t.TempDir(), zap.NewNop())

	want := Settings{
		Username:     "ana",
		DarkMode:     false,
		NumQuestions: 20,
		ExamSeconds:  45,
		AutoExport:   true,
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = os.Stat(filepath.Join(filepath.Dir(s.Path()), "settings.tmp.json"))
	assert.True(t, os.IsNotExist(err), "temp file left behind")
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"username": "ravi"}`), 0o644))

	got, err := NewStore(dir, nil).Load()
	require.NoError(t, err)

	want := Defaults()
	want.Username = "ravi"
	assert.Equal(t, want, got)
}

func TestLoadFileOverridesOnlyItsKeys(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		edit func(*Settings)
	}{
		{"dark mode off", `{"dark_mode": false}`, func(s *Settings) { s.DarkMode = false }},
		{"exam seconds", `{"exam_seconds": 90}`, func(s *Settings) { s.ExamSeconds = 90 }},
		{"empty object", `{}`, func(*Settings) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.doc), 0o644))

			got, err := NewStore(dir, nil).Load()
			require.NoError(t, err)

			want := Defaults()
			tt.edit(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadClampsOutOfRange(t *testing.T) {
	dir := t.TempDir()
	doc := `{"username": "  ", "num_questions": 500, "exam_seconds": 1}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(doc), 0o644))

	got, err := NewStore(dir, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, "Engineer", got.Username)
	assert.Equal(t, MaxQuestions, got.NumQuestions)
	assert.Equal(t, MinExamSeconds, got.ExamSeconds)
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{not json`), 0o644))

	got, err := NewStore(dir, nil).Load()
	assert.Error(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
		want Settings
	}{
		{
			name: "in range untouched",
			in:   Settings{Username: "x", NumQuestions: 5, ExamSeconds: 60},
			want: Settings{Username: "x", NumQuestions: 5, ExamSeconds: 60},
		},
		{
			name: "zero values clamped up",
			in:   Settings{},
			want: Settings{Username: "Engineer", NumQuestions: MinQuestions, ExamSeconds: MinExamSeconds},
		},
		{
			name: "large values clamped down",
			in:   Settings{Username: " bo ", NumQuestions: 99, ExamSeconds: 9999},
			want: Settings{Username: "bo", NumQuestions: MaxQuestions, ExamSeconds: MaxExamSeconds},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestReset(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	require.NoError(t, s.Reset())

	require.NoError(t, s.Save(Defaults()))
	require.NoError(t, s.Reset())

	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestWatchSeesSave(t *testing.T) {
	s := NewStore(t.TempDir(), zap.NewNop())
	s.debounce = 20 * time.Millisecond
	require.NoError(t, s.Save(Defaults()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Settings, 4)
	require.NoError(t, s.Watch(ctx, func(st Settings) { got <- st }))

	updated := Defaults()
	updated.Username = "watcher"
	require.NoError(t, s.Save(updated))

	select {
	case st := <-got:
		assert.Equal(t, "watcher", st.Username)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestHolderNormalizes(t *testing.T) {
	h := NewHolder(Settings{Username: "  ", NumQuestions: 0, ExamSeconds: 9999})
	got := h.Get()
	assert.Equal(t, "Engineer", got.Username)
	assert.Equal(t, MinQuestions, got.NumQuestions)
	assert.Equal(t, MaxExamSeconds, got.ExamSeconds)

	s := Defaults()
	s.AutoExport = true
	h.Set(s)
	assert.True(t, h.AutoExport())
}
