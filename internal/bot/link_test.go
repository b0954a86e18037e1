package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkHandler_IgnoresUnrelatedText(t *testing.T) {
	env := setupHandler(t)
	ctx := context.Background()

	for _, text := range []string{"hi there", "", "https://example.com/video", "/unknown instagram.com"} {
		env.h.linkHandler(ctx, nil, textUpdate(42, text))
	}

	assert.Empty(t, env.sender.calls, "unrelated text must produce no outbound messages")
	assert.Empty(t, env.extractor.gotURL, "extractor must not run")
	assertDirEmpty(t, env.downloads)
	n, _ := env.repo.Count(ctx)
	assert.Zero(t, n)
}

func TestLinkHandler_VideoSentWithStreaming(t *testing.T) {
	env := setupHandler(t)
	ctx := context.Background()

	var editsAtExtract []sentCall
	env.extractor.onExtract = func() { editsAtExtract = env.sender.byMethod("EditMessageText") }

	env.h.linkHandler(ctx, nil, textUpdate(42, "check https://www.instagram.com/reel/C0abc/"))

	assert.Equal(t, "https://www.instagram.com/reel/C0abc/", env.extractor.gotURL)

	placeholders := env.sender.byMethod("SendMessage")
	require.Len(t, placeholders, 1)
	assert.Equal(t, catalog["en"].processing, placeholders[0].text)

	require.Len(t, editsAtExtract, 1, "the user sees the downloading stage before extraction starts")
	assert.Equal(t, catalog["en"].downloading, editsAtExtract[0].text)

	edits := env.sender.byMethod("EditMessageText")
	require.Len(t, edits, 2)
	assert.Equal(t, catalog["en"].downloading, edits[0].text)
	assert.Equal(t, catalog["en"].uploading, edits[1].text)
	for _, e := range edits {
		assert.Equal(t, 1, e.messageID, "every stage edits the placeholder")
	}

	videos := env.sender.byMethod("SendVideo")
	require.Len(t, videos, 1)
	assert.True(t, videos[0].streaming, "videos must be sent with streaming enabled")
	assert.Equal(t, "C0abc.mp4", videos[0].upload)
	assert.Equal(t, "media", videos[0].payload)
	assert.Equal(t, "here you go", videos[0].text)
	assert.Equal(t, int64(42), videos[0].chatID)
	assert.Empty(t, env.sender.byMethod("SendDocument"))

	deletes := env.sender.byMethod("DeleteMessage")
	require.Len(t, deletes, 1)
	assert.Equal(t, 1, deletes[0].messageID, "the placeholder is the first message sent")

	assert.NoFileExists(t, env.extractor.produced)
	assertDirEmpty(t, env.downloads)

	n, _ := env.repo.Count(ctx)
	assert.Equal(t, 1, n, "sending a link registers the user")
}

func TestLinkHandler_ClassifiesByExtension(t *testing.T) {
	cases := map[string]string{
		".jpg":  "SendPhoto",
		".webp": "SendPhoto",
		".mkv":  "SendVideo",
		".gif":  "SendDocument",
		".m4a":  "SendDocument",
	}
	for ext, method := range cases {
		t.Run(ext, func(t *testing.T) {
			env := setupHandler(t)
			env.extractor.ext = ext

			env.h.linkHandler(context.Background(), nil, textUpdate(42, "https://instagram.com/p/x"))

			sent := env.sender.byMethod(method)
			require.Len(t, sent, 1)
			assert.Equal(t, "C0abc"+ext, sent[0].upload)
			assertDirEmpty(t, env.downloads)
		})
	}
}

func TestLinkHandler_ExtractionFailure(t *testing.T) {
	env := setupHandler(t)
	env.extractor.err = errors.New("ERROR: [Instagram] C0abc: This account is private")

	env.h.linkHandler(context.Background(), nil, textUpdate(42, "https://instagram.com/p/C0abc"))

	edits := env.sender.byMethod("EditMessageText")
	require.Len(t, edits, 2)
	assert.Equal(t, catalog["en"].downloading, edits[0].text)
	assert.Equal(t, catalog["en"].extractFailed, edits[1].text)
	assert.Equal(t, 1, edits[1].messageID)

	assert.Empty(t, env.sender.byMethod("SendVideo"))
	assert.Empty(t, env.sender.byMethod("SendPhoto"))
	assert.Empty(t, env.sender.byMethod("SendDocument"))
	assert.Empty(t, env.sender.byMethod("DeleteMessage"))

	assert.NotEmpty(t, env.extractor.gotDir)
	assert.NoDirExists(t, env.extractor.gotDir, "partial downloads must be removed")
	assertDirEmpty(t, env.downloads)
}

func TestLinkHandler_UploadFailureStillCleansUp(t *testing.T) {
	env := setupHandler(t)
	env.sender.mediaErr = fmt.Errorf("%w, Request Entity Too Large", tgbot.ErrorBadRequest)

	env.h.linkHandler(context.Background(), nil, textUpdate(42, "https://instagram.com/reel/C0abc"))

	edits := env.sender.byMethod("EditMessageText")
	require.Len(t, edits, 3)
	assert.Equal(t, catalog["en"].uploading, edits[1].text)
	assert.Equal(t, catalog["en"].extractFailed, edits[2].text)

	assert.NoFileExists(t, env.extractor.produced)
	assertDirEmpty(t, env.downloads)
}

func TestLinkHandler_PlaceholderFailureSkipsDownload(t *testing.T) {
	env := setupHandler(t)
	env.sender.sendErr[42] = errors.New("network down")

	env.h.linkHandler(context.Background(), nil, textUpdate(42, "https://instagram.com/reel/C0abc"))

	assert.Empty(t, env.extractor.gotURL)
	assertDirEmpty(t, env.downloads)
}

func TestLinkHandler_LocalizedPlaceholder(t *testing.T) {
	env := setupHandler(t)
	upd := textUpdate(42, "https://instagram.com/reel/C0abc")
	upd.Message.From.LanguageCode = "hi"

	env.h.linkHandler(context.Background(), nil, upd)

	placeholders := env.sender.byMethod("SendMessage")
	require.Len(t, placeholders, 1)
	assert.Equal(t, catalog["hi"].processing, placeholders[0].text)

	edits := env.sender.byMethod("EditMessageText")
	require.NotEmpty(t, edits)
	assert.Equal(t, catalog["hi"].downloading, edits[0].text)
}

func TestCleanDownloads_RemovesStaleRequestDirs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"req-111", "req-222"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name, "C0abc.mp4.part"), []byte("partial"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "keep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "req-notes.txt"), []byte("x"), 0o644))

	n, err := CleanDownloads(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoDirExists(t, filepath.Join(dir, "req-111"))
	assert.NoDirExists(t, filepath.Join(dir, "req-222"))
	assert.DirExists(t, filepath.Join(dir, "keep"), "only request directories are swept")
	assert.FileExists(t, filepath.Join(dir, "req-notes.txt"))
}

func TestCleanDownloads_MissingDir(t *testing.T) {
	_, err := CleanDownloads(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
