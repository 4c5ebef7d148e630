package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"video-uploader/internal/blobstore"
	"video-uploader/internal/entity"
	"video-uploader/internal/repository"
)

// VideoStore is the metadata side of a video: one row per uploaded blob.
type VideoStore interface {
	List(ctx context.Context) ([]entity.Video, error)
	Get(ctx context.Context, id uint) (*entity.Video, error)
	Insert(ctx context.Context, v *entity.Video) error
	Delete(ctx context.Context, id uint) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Videos VideoStore
	Blobs  blobstore.Store
	DB     Pinger
	// Bucket names the bucket in object URLs, for rows stored without a key.
	Bucket string
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// parseID accepts only non-negative integers; anything else is an unknown video.
func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) GetVideos(c echo.Context) error {
	videos, err := h.Videos.List(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("failed to fetch videos: %v", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to fetch videos")
	}

	return c.JSON(http.StatusOK, map[string][]entity.Video{"videos": videos})
}

func (h *Handler) GetVideo(c echo.Context) error {
	videoID, ok := parseID(c)
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Video not found")
	}

	video, err := h.Videos.Get(c.Request().Context(), videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Video not found")
		}
		c.Logger().Errorf("failed to find video %d: %v", videoID, err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]*entity.Video{"video": video})
}

// DeleteVideo removes the blob first and the record last. A failed blob
// delete leaves the record in place.
func (h *Handler) DeleteVideo(c echo.Context) error {
	ctx := c.Request().Context()
	videoID, ok := parseID(c)
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Video not found")
	}

	video, err := h.Videos.Get(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Video not found")
		}
		c.Logger().Errorf("failed to find video %d: %v", videoID, err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete video")
	}

	key := video.StorageKey
	if key == "" {
		key = blobstore.KeyFromURL(video.URL, h.Bucket)
	}

	if err := h.Blobs.Delete(ctx, key); err != nil {
		var credsErr *blobstore.CredentialsError
		if errors.As(err, &credsErr) {
			return errorJSON(c, http.StatusForbidden, credsErr.Error())
		}
		c.Logger().Errorf("failed to delete blob %s for video %d: %v", key, videoID, err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete video from S3: "+unwrapStorage(err).Error())
	}
	c.Logger().Infof("deleted blob %s for video %d", key, videoID)

	if err := h.Videos.Delete(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Video not found")
		}
		c.Logger().Errorf("failed to delete video %d from DB: %v", videoID, err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to delete video")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Video deleted successfully"})
}

// Upload writes the blob first and the record last. If the record insert
// fails the blob stays behind and its key is logged.
func (h *Handler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	file, err := c.FormFile("file")
	if err != nil {
		// A "file" part sent with an empty filename is parsed as a plain value.
		if form := c.Request().MultipartForm; form != nil {
			if _, ok := form.Value["file"]; ok {
				return errorJSON(c, http.StatusBadRequest, "No selected file")
			}
		}
		c.Logger().Warnf("upload without file part: %v", err)
		return errorJSON(c, http.StatusBadRequest, "No file part")
	}
	if file.Filename == "" {
		return errorJSON(c, http.StatusBadRequest, "No selected file")
	}

	key := blobstore.NewKey(file.Filename)
	c.Logger().Infof("upload start name=%s key=%s size=%d", file.Filename, key, file.Size)

	src, err := file.Open()
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.Logger().Errorf("read upload %s: %v", file.Filename, err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	fileURL, err := h.Blobs.Put(ctx, key, data, file.Header.Get(echo.HeaderContentType))
	if err != nil {
		var credsErr *blobstore.CredentialsError
		if errors.As(err, &credsErr) {
			return errorJSON(c, http.StatusForbidden, credsErr.Error())
		}
		c.Logger().Errorf("failed to store blob %s: %v", key, err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	video := entity.Video{
		Filename:   file.Filename,
		URL:        fileURL,
		StorageKey: key,
	}
	if err := h.Videos.Insert(ctx, &video); err != nil {
		c.Logger().Warnf("orphaned blob %s: metadata insert failed: %v", key, err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	c.Logger().Infof("upload done id=%d key=%s", video.ID, key)

	return c.JSON(http.StatusOK, map[string]string{"file_url": fileURL})
}

func (h *Handler) Health(c echo.Context) error {
	if h.DB != nil {
		if err := h.DB.Ping(c.Request().Context()); err != nil {
			return errorJSON(c, http.StatusServiceUnavailable, err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func unwrapStorage(err error) error {
	var se *blobstore.StorageError
	if errors.As(err, &se) && se.Err != nil {
		return se.Err
	}
	return err
}
