// Package ddl builds DuckDB statements for secrets and file readers.
package ddl

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CreateS3Secret returns a DuckDB DDL statement to create an S3 secret.
func CreateS3Secret(name, keyID, secret, endpoint, region, urlStyle string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid secret name: %w", err)
	}
	if urlStyle == "" {
		urlStyle = "path"
	}
	return fmt.Sprintf(`CREATE OR REPLACE SECRET %s (
	TYPE S3,
	KEY_ID %s,
	SECRET %s,
	ENDPOINT %s,
	REGION %s,
	URL_STYLE %s
)`,
		QuoteIdentifier(name),
		QuoteLiteral(keyID),
		QuoteLiteral(secret),
		QuoteLiteral(endpoint),
		QuoteLiteral(region),
		QuoteLiteral(urlStyle),
	), nil
}

// DropSecret returns a DuckDB DDL statement: DROP SECRET IF EXISTS "<name>".
func DropSecret(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid secret name: %w", err)
	}
	return fmt.Sprintf("DROP SECRET IF EXISTS %s", QuoteIdentifier(name)), nil
}

// FileFormatFromPath infers a reader format from the file extension.
// Unknown extensions default to parquet.
func FileFormatFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.ToLower(path), ".gz")))
	switch ext {
	case ".csv", ".tsv":
		return "csv"
	case ".json", ".jsonl", ".ndjson":
		return "json"
	default:
		return "parquet"
	}
}

// ReadFunction returns the DuckDB table function call that reads sourcePath,
// e.g. read_parquet('s3://bucket/x.parquet').
func ReadFunction(sourcePath, fileFormat string) (string, error) {
	if sourcePath == "" {
		return "", fmt.Errorf("source path is required")
	}

	var readFunc string
	switch strings.ToLower(fileFormat) {
	case "parquet", "":
		readFunc = "read_parquet"
	case "csv":
		readFunc = "read_csv_auto"
	case "json":
		readFunc = "read_json_auto"
	default:
		return "", fmt.Errorf("unsupported file format: %q", fileFormat)
	}
	return fmt.Sprintf("%s(%s)", readFunc, QuoteLiteral(sourcePath)), nil
}
