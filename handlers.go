package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"dictionary_classifier/classifier"
	"dictionary_classifier/records"
)

const (
	defaultPreviewRows = 50
	outputFileName     = "classified_output.csv"
	maxDictionaryBytes = 1 << 20
)

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"timestamp":   time.Now(),
		"auto_reload": "enabled",
	})
}

func handleCacheInfo(c echo.Context) error {
	entries := dictionaryCache.Snapshot()

	dictionaries := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		dictionaries = append(dictionaries, map[string]interface{}{
			"dictionary": entry.name,
			"revision":   entry.revision,
			"loaded_at":  entry.loadedAt,
			"source":     entry.source,
			"file_path":  entry.filePath,
			"labels":     entry.compiled.Stats(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"cached_dictionaries": len(entries),
		"dictionaries":        dictionaries,
		"timestamp":           time.Now(),
	})
}

func handleReloadDictionary(c echo.Context) error {
	name := c.Param("name")
	dictionaryCache.Evict(name)

	return c.JSON(http.StatusOK, ReloadResponse{
		Message:    fmt.Sprintf("Dictionary '%s' cache cleared and will reload on next request", name),
		Dictionary: name,
		ReloadedAt: time.Now(),
	})
}

func handleReloadAll(c echo.Context) error {
	count := dictionaryCache.EvictAll()

	return c.JSON(http.StatusOK, ReloadResponse{
		Message:    fmt.Sprintf("All %d dictionary caches cleared and will reload on next request", count),
		ReloadedAt: time.Now(),
	})
}

func handleGetDictionary(c echo.Context) error {
	entry, err := dictionaryCache.Get(c.Param("name"))
	if err != nil {
		return dictionaryError(c, err)
	}
	return c.JSON(http.StatusOK, dictionaryResponse(entry))
}

// handlePutDictionary installs an edited dictionary sent as a JSON object.
func handlePutDictionary(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxDictionaryBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Could not read request body"})
	}

	d, err := classifier.ParseJSON(body)
	if err != nil {
		return dictionaryError(c, err)
	}

	entry, err := dictionaryCache.Put(c.Param("name"), d)
	if err != nil {
		return dictionaryError(c, err)
	}
	return c.JSON(http.StatusOK, dictionaryResponse(entry))
}

func handleClassify(c echo.Context) error {
	var req ClassifyRequest

	// Bind request (works for both POST JSON and GET query params)
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
	}
	if req.Dictionary == "" {
		req.Dictionary = defaultDictionaryName
	}

	entry, err := dictionaryCache.Get(req.Dictionary)
	if err != nil {
		return dictionaryError(c, err)
	}

	if req.Statements != nil {
		texts := make([]interface{}, len(req.Statements))
		for i, s := range req.Statements {
			texts[i] = s
		}
		results, err := entry.compiled.ClassifyAll(c.Request().Context(), texts, 0)
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		}
		if results == nil {
			results = []string{}
		}
		return c.JSON(http.StatusOK, BatchClassifyResponse{
			Dictionary: entry.name,
			Revision:   entry.revision,
			Results:    results,
		})
	}

	return c.JSON(http.StatusOK, ClassifyResponse{
		Dictionary: entry.name,
		Revision:   entry.revision,
		Labels:     entry.compiled.Classify(req.Statement),
	})
}

// handleClassifyCSV classifies an uploaded CSV. It answers with the full
// CSV as a download, or with a JSON preview when ?preview is set.
func handleClassifyCSV(c echo.Context) error {
	name := c.QueryParam("dictionary")
	if name == "" {
		name = defaultDictionaryName
	}

	entry, err := dictionaryCache.Get(name)
	if err != nil {
		return dictionaryError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Upload a CSV in the 'file' field"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Could not read CSV: %v", err)})
	}
	defer file.Close()

	table, err := records.ReadCSV(file)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("Could not read CSV: %v", err)})
	}

	labels, err := entry.compiled.ClassifyAll(c.Request().Context(), table.Statements(), 0)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	}
	if err := table.SetLabels(labels); err != nil {
		return err
	}

	if preview := c.QueryParam("preview"); preview != "" {
		n, err := strconv.Atoi(preview)
		if err != nil || n <= 0 {
			n = defaultPreviewRows
		}
		head := table.Head(n)
		return c.JSON(http.StatusOK, PreviewResponse{
			Dictionary: entry.name,
			Revision:   entry.revision,
			Rows:       len(table.Rows),
			Columns:    head.Header,
			Preview:    head.Records(),
		})
	}

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", outputFileName))
	c.Response().Header().Set("X-Dictionary-Revision", entry.revision)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func dictionaryResponse(entry *compiledDictionary) DictionaryResponse {
	return DictionaryResponse{
		Name:       entry.name,
		Revision:   entry.revision,
		LoadedAt:   entry.loadedAt,
		Source:     entry.source,
		Dictionary: entry.dictionary,
		Stats:      entry.compiled.Stats(),
	}
}

// dictionaryError maps load and compile failures to HTTP responses
func dictionaryError(c echo.Context, err error) error {
	var cerr *classifier.CompileError
	switch {
	case errors.As(err, &cerr):
		label := cerr.Label
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Label: &label})
	case errors.Is(err, ErrUnknownDictionary):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		// malformed JSON or YAML
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
}
