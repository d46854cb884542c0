package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"GoGallery/internal/dto"
	"GoGallery/internal/service"
	"GoGallery/model"
	"GoGallery/utils"
)

var gallery *service.GalleryService

// SetGalleryService wires the gallery service used by the handlers.
func SetGalleryService(svc *service.GalleryService) {
	gallery = svc
}

// Upload stores a media file and creates its metadata record.
func Upload(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "No file uploaded."})
		return
	}
	folder := c.PostForm("folder")

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "No file uploaded."})
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		utils.FailStatus(c, http.StatusInternalServerError, "Server Error: Unable to upload file.", err)
		return
	}

	file, err := gallery.Upload(c.Request.Context(), userID, data, header.Filename, header.Header.Get("Content-Type"), folder)
	if err != nil {
		writeGalleryError(c, err, "Server Error: Unable to upload file.")
		return
	}

	msg := "Image uploaded successfully!"
	if file.Kind == model.KindVideo {
		msg = "Video uploaded successfully!"
	}
	c.JSON(http.StatusOK, gin.H{"msg": msg, "url": file.FileURL})
}

// Files lists the caller's records in a folder plus its subfolders.
func Files(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)

	folder := c.DefaultQuery("folder", "/")
	if !service.ValidFolder(service.NormalizeFolder(folder)) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid folder path"})
		return
	}

	files, folders, err := gallery.List(c.Request.Context(), userID, folder)
	if err != nil {
		writeGalleryError(c, err, "Server Error: Unable to fetch files.")
		return
	}

	views := make([]dto.MediaFileView, 0, len(files))
	for _, file := range files {
		views = append(views, dto.NewMediaFileView(file))
	}
	c.JSON(http.StatusOK, gin.H{"files": views, "folders": folders})
}

// Delete removes one record and its stored object.
func Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	fileID, ok := parseFileID(c)
	if !ok {
		return
	}

	if err := gallery.Delete(c.Request.Context(), userID, fileID); err != nil {
		writeGalleryError(c, err, "Server Error: Unable to delete file.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "File deleted successfully"})
}

// DeleteMultiple removes a batch of records. Missing ids are skipped.
func DeleteMultiple(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)

	var req dto.DeleteMultipleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "All file IDs must be valid"})
		return
	}
	if len(req.FileIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "No file IDs provided"})
		return
	}

	if err := gallery.DeleteMultiple(c.Request.Context(), userID, req.FileIDs); err != nil {
		writeGalleryError(c, err, "Server Error: Unable to delete files.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Selected files deleted successfully"})
}

// Rename changes a record's display name and storage key.
func Rename(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	fileID, ok := parseFileID(c)
	if !ok {
		return
	}

	var req dto.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "File name must be between 1 and 255 characters"})
		return
	}
	newName := strings.TrimSpace(req.NewFileName)
	if length := utf8.RuneCountInString(newName); length < 1 || length > 255 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "File name must be between 1 and 255 characters"})
		return
	}

	file, err := gallery.Rename(c.Request.Context(), userID, fileID, newName)
	if err != nil {
		writeGalleryError(c, err, "Server Error: Unable to rename file.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"msg":      "File renamed successfully",
		"fileName": file.FileName,
		"fileUrl":  file.FileURL,
	})
}

// Update replaces a record's content.
func Update(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	fileID, ok := parseFileID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "No file uploaded."})
		return
	}
	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "No file uploaded."})
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		utils.FailStatus(c, http.StatusInternalServerError, "Server Error: Unable to update file.", err)
		return
	}

	file, err := gallery.Update(c.Request.Context(), userID, fileID, data, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeGalleryError(c, err, "Server Error: Unable to update file.")
		return
	}

	msg := "Image updated successfully!"
	if file.Kind == model.KindVideo {
		msg = "Video updated successfully!"
	}
	c.JSON(http.StatusOK, gin.H{"msg": msg, "url": file.FileURL})
}

func parseFileID(c *gin.Context) (uint64, bool) {
	fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid file ID"})
		return 0, false
	}
	return fileID, true
}

// writeGalleryError translates service failures to HTTP responses.
func writeGalleryError(c *gin.Context, err error, serverMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "File not found"})
	case errors.Is(err, service.ErrUnsupportedFileType):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Unsupported file type."})
	case errors.Is(err, service.ErrEmptyFile):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "No file uploaded."})
	case errors.Is(err, service.ErrInvalidFileName):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "File name contains invalid characters"})
	case errors.Is(err, service.ErrInvalidFolder):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid folder path"})
	default:
		utils.FailStatus(c, http.StatusInternalServerError, serverMsg, err)
	}
}
