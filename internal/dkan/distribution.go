package dkan

// distribution.go covers the upload half of an import: pushing the rendered
// CSV to the importer endpoint, swapping it into the dataset's distribution
// list, and cleaning up the file it replaced.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Filename builds the unique output name for one import run:
// {dataset_id}_{dictionary_id}_{timestamp}.csv.
func Filename(datasetID, dictionaryID string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.csv", datasetID, dictionaryID, now.Format("2006-01-02_15-04-05"))
}

// UploadCSV posts the CSV at path to the importer upload endpoint and
// returns the URL of the stored file.
func (c *Client) UploadCSV(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read csv: %w", err)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("csv", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/importer/upload"), &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	body, err := c.do(req, "uploadCSV")
	if err != nil {
		return "", err
	}

	var out struct {
		Data struct {
			FileURL string `json:"file_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("uploadCSV: parse response: %w", err)
	}
	if out.Data.FileURL == "" {
		return "", fmt.Errorf("uploadCSV: response carries no file_url")
	}
	return out.Data.FileURL, nil
}

// AddDistribution attaches the uploaded CSV to the dataset as a new
// distribution, replacing any existing distribution described by the same
// data dictionary. It returns the filename of the replaced distribution,
// if there was one, so the caller can delete the stale remote file.
func (c *Client) AddDistribution(ctx context.Context, datasetID, fileName, fileURL, dictionaryURL string) (string, error) {
	datasetURL := c.endpoint("/api/1/metastore/schemas/dataset/items/%s", url.PathEscape(datasetID))

	var dataset map[string]json.RawMessage
	if err := c.getJSON(ctx, "getDataset", datasetURL, &dataset); err != nil {
		return "", err
	}

	var existing []map[string]any
	if raw, ok := dataset["distribution"]; ok {
		if err := json.Unmarshal(raw, &existing); err != nil {
			return "", fmt.Errorf("getDataset: parse distributions: %w", err)
		}
	}

	previous := ""
	kept := make([]map[string]any, 0, len(existing)+1)
	for _, dist := range existing {
		describedBy, _ := dist["describedBy"].(string)
		if describedBy != dictionaryURL {
			kept = append(kept, dist)
			continue
		}
		// This one gets replaced; remember its filename for cleanup.
		if title, ok := dist["title"].(string); ok && title != "" {
			previous = title
		} else if download, ok := dist["downloadURL"].(string); ok {
			previous = filepath.Base(download)
		}
	}

	kept = append(kept, map[string]any{
		"title":           fileName,
		"description":     fmt.Sprintf("Data file: %s", fileName),
		"format":          "csv",
		"mediaType":       "text/csv",
		"downloadURL":     fileURL,
		"describedBy":     dictionaryURL,
		"describedByType": "application/vnd.tableschema+json",
	})

	updated, err := json.Marshal(kept)
	if err != nil {
		return "", err
	}
	dataset["distribution"] = updated

	payload, err := json.Marshal(dataset)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, datasetURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req, "patchDataset"); err != nil {
		return "", err
	}
	return previous, nil
}

// DeleteFile removes a previously uploaded file from the importer storage.
// The endpoint does not accept DELETE, so deletion goes through POST.
func (c *Client) DeleteFile(ctx context.Context, fileName string) error {
	u := c.endpoint("/api/importer/delete/%s", url.PathEscape(fileName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	if _, err := c.do(req, "deleteFile"); err != nil {
		return err
	}
	return nil
}
