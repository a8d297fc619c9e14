package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"market-dashboard/src/helpers"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------

// writeError maps err to its status and writes {"error": message}.
func writeError(c *gin.Context, err error) {
	c.JSON(helpers.StatusCode(err), gin.H{"error": err.Error()})
}

// -----------------------------------------------------------------------------

// fallback handles unmatched paths: websocket upgrades join the push channel,
// everything else gets a static asset or the UI entry document.
func (s *DashboardServer) fallback(c *gin.Context) {
	if websocket.IsWebSocketUpgrade(c.Request) {
		s.handleWebSocket(c)
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if file, ok := staticFile(s.Config.StaticDir, c.Request.URL.Path); ok {
		c.File(file)
		return
	}
	if index, ok := staticFile(s.Config.StaticDir, "/index.html"); ok {
		c.File(index)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

// -----------------------------------------------------------------------------

// staticFile resolves urlPath inside root, refusing anything outside it.
func staticFile(root, urlPath string) (string, bool) {
	if root == "" {
		return "", false
	}
	clean := filepath.Clean("/" + urlPath)
	if clean == "/" {
		return "", false
	}
	full := filepath.Join(root, filepath.FromSlash(clean))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}
	return full, true
}
