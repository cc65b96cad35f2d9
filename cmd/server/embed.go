//go:build embed
// +build embed

package main

import (
	"embed"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed web/out
var webOut embed.FS

// setupStaticFiles serves the statically exported web app, falling back to index.html
func setupStaticFiles(router *gin.Engine) {
	log.Println("📦 Using embedded frontend assets")

	outFS, err := fs.Sub(webOut, "web/out")
	if err != nil {
		log.Fatalf("Failed to get web/out subdirectory: %v", err)
	}

	router.NoRoute(func(c *gin.Context) {
		urlPath := c.Request.URL.Path

		// Skip API routes (they are handled by other routes)
		if strings.HasPrefix(urlPath, "/api") {
			c.JSON(404, gin.H{"error": "API endpoint not found"})
			return
		}

		// Exported pages live at /booking/1.html or /dashboard/index.html
		name := strings.TrimPrefix(path.Clean(urlPath), "/")
		if name == "" {
			name = "index.html"
		}
		for _, candidate := range []string{name, name + ".html", path.Join(name, "index.html")} {
			content, err := fs.ReadFile(outFS, candidate)
			if err != nil {
				continue
			}
			contentType := mime.TypeByExtension(path.Ext(candidate))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			c.Data(http.StatusOK, contentType, content)
			return
		}

		// File not found, serve index.html for SPA routing
		content, err := fs.ReadFile(outFS, "index.html")
		if err != nil {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", content)
	})
}
