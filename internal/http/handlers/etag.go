package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// etagFor hashes the JSON form of payload. An empty result means no ETag.
func etagFor(payload interface{}) string {
	b, err := json.Marshal(payload)
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(b)

	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// respondWithETag writes payload, or 304 when the client already holds etag.
func respondWithETag(ctx *gin.Context, etag string, payload interface{}) {
	if etag == "" {
		ctx.JSON(http.StatusOK, payload)
		return
	}

	ctx.Header("ETag", etag)
	// cacheable, but only after revalidation against the ETag
	ctx.Header("Cache-Control", "no-cache")

	if ifNoneMatch(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(http.StatusOK, payload)
}

func ifNoneMatch(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}

	if header == "*" {
		return true
	}

	for _, part := range strings.Split(header, ",") {
		// weak validators like W/"abc" compare equal for GET
		part = strings.TrimPrefix(strings.TrimSpace(part), "W/")
		if part == etag {
			return true
		}
	}

	return false
}
