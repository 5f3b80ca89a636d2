package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clipstream/clipstream-backend/internal/common/clock"
	"github.com/clipstream/clipstream-backend/internal/common/crypto"
	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/media"
	"github.com/clipstream/clipstream-backend/internal/realtime"
	userdomain "github.com/clipstream/clipstream-backend/internal/user/domain"
	userrepo "github.com/clipstream/clipstream-backend/internal/user/repository"
	"github.com/clipstream/clipstream-backend/internal/video/repository"
	"github.com/clipstream/clipstream-backend/internal/viewcount"
)

type fakeUploader struct {
	uploadFunc func(ctx context.Context, kind string, r io.Reader, size int64, contentType string) (media.Object, error)
	uploads    []string
	removed    []string
}

func (f *fakeUploader) Upload(ctx context.Context, kind string, r io.Reader, size int64, contentType string) (media.Object, error) {
	f.uploads = append(f.uploads, kind)
	if f.uploadFunc != nil {
		return f.uploadFunc(ctx, kind, r, size, contentType)
	}
	return media.Object{URL: "/media/" + kind + "/obj", Key: kind + "/obj"}, nil
}

func (f *fakeUploader) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

type fixture struct {
	svc      *VideoService
	videos   *repository.MemoryVideoRepository
	users    *userrepo.MemoryUserRepository
	uploader *fakeUploader
	clk      *clock.MockClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	videos := repository.NewMemoryVideoRepository()
	users := userrepo.NewMemoryUserRepository()
	uploader := &fakeUploader{}
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewVideoService(
		videos, users, uploader, viewcount.NewDirectCounter(videos),
		realtime.NewHub(logger.NewNop()), crypto.NewUUIDGenerator(), clk, logger.NewNop(),
	)
	return &fixture{svc: svc, videos: videos, users: users, uploader: uploader, clk: clk}
}

func stageFile(t *testing.T, content string) *media.StagedFile {
	t.Helper()

	path := filepath.Join(t.TempDir(), "staged")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	return &media.StagedFile{Path: path, Size: int64(len(content)), ContentType: "video/mp4"}
}

func publish(t *testing.T, fx *fixture, owner string) string {
	t.Helper()

	video, err := fx.svc.Publish(context.Background(), owner, PublishParams{
		Title:    "My First Clip",
		Duration: 12.5,
	}, stageFile(t, "video-bytes"), stageFile(t, "thumb-bytes"))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	return video.ID
}

func TestVideoService_Publish(t *testing.T) {
	fx := newFixture(t)

	id := publish(t, fx, "owner-1")

	video, err := fx.videos.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if video.VideoURL == "" || video.ThumbnailURL == "" {
		t.Error("media urls not stored")
	}
	if !video.IsPublished {
		t.Error("publish should mark the video published")
	}
	if len(fx.uploader.uploads) != 2 {
		t.Errorf("expected 2 uploads, got %v", fx.uploader.uploads)
	}
}

func TestVideoService_PublishValidation(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Publish(context.Background(), "owner-1", PublishParams{}, nil, nil)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if len(fx.uploader.uploads) != 0 {
		t.Error("nothing should reach the media host on validation failure")
	}
}

func TestVideoService_PublishCleansUpOnThumbnailFailure(t *testing.T) {
	fx := newFixture(t)
	fx.uploader.uploadFunc = func(_ context.Context, kind string, _ io.Reader, _ int64, _ string) (media.Object, error) {
		if kind == media.KindThumbnail {
			return media.Object{}, commonerrors.ErrMediaHostError
		}
		return media.Object{URL: "/media/" + kind + "/obj", Key: kind + "/obj"}, nil
	}

	_, err := fx.svc.Publish(context.Background(), "owner-1", PublishParams{Title: "Clip"},
		stageFile(t, "video-bytes"), stageFile(t, "thumb-bytes"))
	if !errors.Is(err, commonerrors.ErrMediaHostError) {
		t.Fatalf("expected media host error, got %v", err)
	}

	if len(fx.uploader.removed) != 1 || fx.uploader.removed[0] != "video/obj" {
		t.Errorf("orphaned video asset not removed: %v", fx.uploader.removed)
	}
}

func TestVideoService_GetCountsViewAndRecordsWatch(t *testing.T) {
	fx := newFixture(t)
	id := publish(t, fx, "owner-1")

	if err := fx.users.Create(context.Background(), &userdomain.User{ID: "viewer-1", Username: "viewer", Email: "v@e.com"}); err != nil {
		t.Fatalf("seed viewer: %v", err)
	}

	if _, err := fx.svc.Get(context.Background(), id, "viewer-1"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	video, _ := fx.videos.FindByID(context.Background(), id)
	if video.Views != 1 {
		t.Errorf("views = %d, want 1", video.Views)
	}

	history, _ := fx.users.WatchHistory(context.Background(), "viewer-1")
	if len(history) != 1 || history[0] != id {
		t.Errorf("watch history = %v, want [%s]", history, id)
	}
}

func TestVideoService_OwnerViewDoesNotCount(t *testing.T) {
	fx := newFixture(t)
	id := publish(t, fx, "owner-1")

	if _, err := fx.svc.Get(context.Background(), id, "owner-1"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	video, _ := fx.videos.FindByID(context.Background(), id)
	if video.Views != 0 {
		t.Errorf("owner views must not count, got %d", video.Views)
	}
}

func TestVideoService_UnpublishedHiddenFromOthers(t *testing.T) {
	fx := newFixture(t)
	id := publish(t, fx, "owner-1")

	if _, err := fx.svc.TogglePublish(context.Background(), id, "owner-1"); err != nil {
		t.Fatalf("TogglePublish: %v", err)
	}

	if _, err := fx.svc.Get(context.Background(), id, "someone-else"); !errors.Is(err, commonerrors.ErrVideoNotFound) {
		t.Errorf("draft must look like a missing video to others, got %v", err)
	}
	if _, err := fx.svc.Get(context.Background(), id, "owner-1"); err != nil {
		t.Errorf("owner must still see the draft: %v", err)
	}
}

func TestVideoService_UpdateOwnershipEnforced(t *testing.T) {
	fx := newFixture(t)
	id := publish(t, fx, "owner-1")

	title := "Renamed"
	if _, err := fx.svc.Update(context.Background(), id, "intruder", UpdateParams{Title: &title}, nil); !errors.Is(err, commonerrors.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}

	video, err := fx.svc.Update(context.Background(), id, "owner-1", UpdateParams{Title: &title}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if video.Title != "Renamed" {
		t.Errorf("title = %s, want Renamed", video.Title)
	}
}

func TestVideoService_DeleteRemovesAssets(t *testing.T) {
	fx := newFixture(t)
	id := publish(t, fx, "owner-1")

	if err := fx.svc.Delete(context.Background(), id, "intruder"); !errors.Is(err, commonerrors.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := fx.svc.Delete(context.Background(), id, "owner-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := fx.videos.FindByID(context.Background(), id); !errors.Is(err, repository.ErrNotFound) {
		t.Error("record not deleted")
	}
	if len(fx.uploader.removed) != 2 {
		t.Errorf("expected video and thumbnail assets removed, got %v", fx.uploader.removed)
	}
}

func TestVideoService_ListPagination(t *testing.T) {
	fx := newFixture(t)
	for i := 0; i < 5; i++ {
		publish(t, fx, "owner-1")
		fx.clk.Advance(time.Second)
	}

	page, err := fx.svc.List(context.Background(), "", ListParams{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || len(page.Videos) != 2 {
		t.Errorf("page = total %d, pages %d, len %d; want 5/3/2", page.Total, page.TotalPages, len(page.Videos))
	}
}

func TestVideoService_ListHidesDraftsExceptFromOwner(t *testing.T) {
	fx := newFixture(t)
	id := publish(t, fx, "owner-1")
	fx.clk.Advance(time.Second)
	publish(t, fx, "owner-1")

	if _, err := fx.svc.TogglePublish(context.Background(), id, "owner-1"); err != nil {
		t.Fatalf("TogglePublish: %v", err)
	}

	public, err := fx.svc.List(context.Background(), "stranger", ListParams{OwnerID: "owner-1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if public.Total != 1 {
		t.Errorf("stranger sees %d videos, want 1", public.Total)
	}

	own, err := fx.svc.List(context.Background(), "owner-1", ListParams{OwnerID: "owner-1"})
	if err != nil {
		t.Fatalf("List own: %v", err)
	}
	if own.Total != 2 {
		t.Errorf("owner sees %d videos, want 2", own.Total)
	}
}
