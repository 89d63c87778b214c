package debugcmd

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Channel {
	t.Helper()
	log, _ := test.NewNullLogger()
	c, err := Open(filepath.Join(t.TempDir(), "cmd"), log)
	require.NoError(t, err)
	return c
}

func TestOpen_TruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmd")
	require.NoError(t, os.WriteFile(path, []byte("quit\n"), 0o644))

	log, _ := test.NewNullLogger()
	c, err := Open(path, log)
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, fi.Size(), "stale commands must not survive init")

	_, ok := c.Poll()
	assert.False(t, ok)
}

func TestOpen_DefaultPath(t *testing.T) {
	if _, err := os.Stat(DefaultPath); err == nil {
		t.Skip("default command file in use by another process")
	}
	log, _ := test.NewNullLogger()
	c, err := Open("", log)
	if err != nil {
		t.Skipf("cannot create default command file: %v", err)
	}
	defer c.Close()
	assert.Equal(t, "/tmp/tankgame_cmd", c.Path())
}

func TestOpen_UnwritableDirectory(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "cmd"), log)
	assert.Error(t, err)
}

func TestChannel_PollDeliversOnce(t *testing.T) {
	c := openTemp(t)
	require.NoError(t, os.WriteFile(c.Path(), []byte("frames 2; screenshot a.png\n"), 0o644))

	text, ok := c.Poll()
	require.True(t, ok)
	assert.Equal(t, "frames 2; screenshot a.png\n", text)

	_, ok = c.Poll()
	assert.False(t, ok, "content must not be replayed")

	fi, err := os.Stat(c.Path())
	require.NoError(t, err)
	assert.Zero(t, fi.Size())
}

func TestChannel_PollMissingFileIsNothingPending(t *testing.T) {
	c := openTemp(t)
	require.NoError(t, os.Remove(c.Path()))
	_, ok := c.Poll()
	assert.False(t, ok)

	var nilChan *Channel
	_, ok = nilChan.Poll()
	assert.False(t, ok)
}

func TestChannel_CloseRemovesFile(t *testing.T) {
	c := openTemp(t)
	require.NoError(t, c.Close())
	_, err := os.Stat(c.Path())
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, c.Close(), "closing twice is harmless")
}

func TestChannel_IndependentHandles(t *testing.T) {
	a := openTemp(t)
	b := openTemp(t)
	require.NoError(t, os.WriteFile(a.Path(), []byte("quit"), 0o644))

	_, ok := b.Poll()
	assert.False(t, ok)
	text, ok := a.Poll()
	assert.True(t, ok)
	assert.Equal(t, "quit", text)
}

func TestQueue_DrainsEverythingSinceLastPoll(t *testing.T) {
	q := NewQueue()
	_, ok := q.Poll()
	require.False(t, ok)

	q.Push("fire\n")
	q.Push("   ")
	q.Push("frames 2")
	assert.Equal(t, 2, q.Len())

	text, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, "fire\nframes 2", text)
	assert.Zero(t, q.Len())
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Push("fire")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, q.Len())
}

func TestSources_JoinsInOrder(t *testing.T) {
	c := openTemp(t)
	q := NewQueue()
	require.NoError(t, os.WriteFile(c.Path(), []byte("turbo off\n"), 0o644))
	q.Push("quit")

	text, ok := Sources{c, nil, q}.Poll()
	require.True(t, ok)
	assert.Equal(t, "turbo off\nquit", text)

	_, ok = Sources{c, q}.Poll()
	assert.False(t, ok)
}

func TestParseAdhoc(t *testing.T) {
	got := ParseAdhoc("screenshot /tmp/a.png\n\nbogus\nscreenshot\nEXIT\nquit now")
	want := []Adhoc{
		{Kind: AdhocScreenshot, Path: "/tmp/a.png"},
		{Kind: AdhocQuit},
		{Kind: AdhocQuit},
	}
	assert.Equal(t, want, got)
}
