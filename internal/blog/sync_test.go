package blog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/starford/ansuz/internal/remote"
	"github.com/starford/ansuz/internal/testutil"
)

// fakeRemote is an in-memory remote.Store. Each write bumps a revision
// counter whose value serves as the version token.
type fakeRemote struct {
	files   map[string]fakeFile
	rev     int
	failOn  map[string]error // path → error to return from writes
	puts    int
	deletes int
}

type fakeFile struct {
	content []byte
	token   string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{files: map[string]fakeFile{}, failOn: map[string]error{}}
}

func (f *fakeRemote) GetFile(_ context.Context, path string) (*remote.File, error) {
	ff, ok := f.files[path]
	if !ok {
		return nil, remote.ErrNotFound
	}
	return &remote.File{Content: ff.content, VersionToken: ff.token}, nil
}

func (f *fakeRemote) PutFile(_ context.Context, path string, content []byte, _ remote.ContentKind, versionToken, _ string) (string, error) {
	if err := f.failOn[path]; err != nil {
		return "", err
	}
	if existing, ok := f.files[path]; ok && existing.token != versionToken {
		return "", remote.ErrStaleWrite
	}
	f.rev++
	token := strconv.Itoa(f.rev)
	f.files[path] = fakeFile{content: content, token: token}
	f.puts++
	return token, nil
}

func (f *fakeRemote) DeleteFile(_ context.Context, path, versionToken, _ string) error {
	if err := f.failOn[path]; err != nil {
		return err
	}
	existing, ok := f.files[path]
	if !ok {
		return remote.ErrNotFound
	}
	if existing.token != versionToken {
		return remote.ErrStaleWrite
	}
	delete(f.files, path)
	f.deletes++
	return nil
}

func (f *fakeRemote) CheckAccess(context.Context) error { return nil }

func syncService(t *testing.T) (*Service, *fakeRemote) {
	t.Helper()
	_, store := testutil.TestSite(t)
	staged := testutil.TestStaging(t)
	rem := newFakeRemote()
	svc := NewService(store, staged, rem, DefaultLayout(), testLogger())
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc, rem
}

func TestSyncPushesStagedEditsAndClears(t *testing.T) {
	svc, rem := syncService(t)

	if _, _, err := svc.SavePost(context.Background(), helloDoc, ""); err != nil {
		t.Fatalf("SavePost: %v", err)
	}

	report, err := svc.SyncRemote(context.Background())
	if err != nil {
		t.Fatalf("SyncRemote: %v", err)
	}
	if len(report.Failed) != 0 {
		t.Fatalf("failures: %+v", report.Failed)
	}
	// Source, reader copy, and index all reach the remote.
	for _, path := range []string{
		"blog/technical/hello-world.md",
		"static-blog/technical/hello-world.txt",
		"blog-index.json",
	} {
		if _, ok := rem.files[path]; !ok {
			t.Errorf("remote missing %s", path)
		}
	}
	n, _ := svc.staged.Len()
	if n != 0 {
		t.Errorf("staging not cleared, %d left", n)
	}

	// A second sync has nothing to do.
	report, err = svc.SyncRemote(context.Background())
	if err != nil {
		t.Fatalf("second SyncRemote: %v", err)
	}
	if len(report.Synced) != 0 {
		t.Errorf("second sync pushed %v", report.Synced)
	}
}

func TestSyncUpdatesExistingRemoteFile(t *testing.T) {
	svc, rem := syncService(t)
	rem.files["blog-index.json"] = fakeFile{content: []byte("{}"), token: "base"}

	if _, _, err := svc.SavePost(context.Background(), helloDoc, ""); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	report, err := svc.SyncRemote(context.Background())
	if err != nil {
		t.Fatalf("SyncRemote: %v", err)
	}
	if len(report.Failed) != 0 {
		t.Fatalf("failures: %+v", report.Failed)
	}
	if string(rem.files["blog-index.json"].content) == "{}" {
		t.Error("remote index not updated")
	}
}

func TestSyncSkipsUnchangedRemoteContent(t *testing.T) {
	svc, rem := syncService(t)

	if _, _, err := svc.SavePost(context.Background(), helloDoc, ""); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	if _, err := svc.SyncRemote(context.Background()); err != nil {
		t.Fatalf("first SyncRemote: %v", err)
	}
	putsAfterFirst := rem.puts

	// Saving identical content restages the same bytes; the drain should
	// notice the remote already matches and clear without writing.
	if _, _, err := svc.SavePost(context.Background(), helloDoc, ""); err != nil {
		t.Fatalf("second SavePost: %v", err)
	}
	report, err := svc.SyncRemote(context.Background())
	if err != nil {
		t.Fatalf("second SyncRemote: %v", err)
	}
	if len(report.Failed) != 0 {
		t.Fatalf("failures: %+v", report.Failed)
	}
	if rem.puts != putsAfterFirst {
		t.Errorf("puts = %d, want %d (unchanged content should not be rewritten)", rem.puts, putsAfterFirst)
	}
	if n, _ := svc.staged.Len(); n != 0 {
		t.Errorf("staged entries remain: %d", n)
	}
}

func TestSyncCollectsPerItemFailures(t *testing.T) {
	svc, rem := syncService(t)
	rem.failOn["blog-index.json"] = fmt.Errorf("boom")

	if _, _, err := svc.SavePost(context.Background(), helloDoc, ""); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	report, err := svc.SyncRemote(context.Background())
	if err != nil {
		t.Fatalf("SyncRemote: %v", err)
	}
	if len(report.Failed) != 1 || report.Failed[0].Path != "blog-index.json" {
		t.Fatalf("failed = %+v", report.Failed)
	}
	if len(report.Synced) != 2 {
		t.Errorf("synced = %v, want the two post files", report.Synced)
	}

	// The failed item stays staged for the next run.
	e, err := svc.staged.Get("blog-index.json")
	if err != nil || e == nil {
		t.Fatalf("failed item not staged: %v %v", e, err)
	}

	delete(rem.failOn, "blog-index.json")
	report, err = svc.SyncRemote(context.Background())
	if err != nil {
		t.Fatalf("retry SyncRemote: %v", err)
	}
	if len(report.Failed) != 0 || len(report.Synced) != 1 {
		t.Errorf("retry report = %+v", report)
	}
}

func TestSyncDeleteOfMissingRemoteFile(t *testing.T) {
	svc, _ := syncService(t)

	// Save then delete before ever syncing: the staged delete targets a
	// path the remote has never seen.
	if _, _, err := svc.SavePost(context.Background(), helloDoc, ""); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	if err := svc.DeletePost(context.Background(), "hello-world"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	report, err := svc.SyncRemote(context.Background())
	if err != nil {
		t.Fatalf("SyncRemote: %v", err)
	}
	if len(report.Failed) != 0 {
		t.Errorf("failures: %+v", report.Failed)
	}
	n, _ := svc.staged.Len()
	if n != 0 {
		t.Errorf("staging not cleared, %d left", n)
	}
}

func TestSyncStopsBetweenItemsOnCancel(t *testing.T) {
	svc, _ := syncService(t)

	if _, _, err := svc.SavePost(context.Background(), helloDoc, ""); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SyncRemote(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	n, _ := svc.staged.Len()
	if n == 0 {
		t.Error("cancelled sync should leave items staged")
	}
}

func TestKindFor(t *testing.T) {
	if kindFor("blog/a/b.md") != remote.ContentText {
		t.Error("markdown should be text")
	}
	if kindFor("blog-index.json") != remote.ContentText {
		t.Error("json should be text")
	}
	if kindFor("images-hello/photo.png") != remote.ContentBinary {
		t.Error("png should be binary")
	}
}
