package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBatchDirParsesHeadersAndRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "careers.csv", "id,code,name,plan\n1,INF,Informatics,2024\n2,MAT,Mathematics,\n")
	writeFile(t, dir, "prerequisites.csv", "subject_id,required_subject_id\n11,10\n")

	batches, err := ReadBatchDir(dir)
	require.NoError(t, err)

	require.Len(t, batches.Careers, 2)
	assert.Equal(t, "INF", batches.Careers[0]["code"])
	assert.Equal(t, "", batches.Careers[1]["plan"])
	require.Len(t, batches.Prerequisites, 1)
	assert.Equal(t, "11", batches.Prerequisites[0]["subject_id"])
	// Files that are absent yield empty batches.
	assert.Empty(t, batches.Activities)
	assert.Empty(t, batches.CalendarEvents)
}

func TestReadBatchDirHeaderOnlyFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "subjects.csv", "id,code,name,career_id\n")

	batches, err := ReadBatchDir(dir)
	require.NoError(t, err)
	assert.Empty(t, batches.Subjects)
}

func TestReadBatchDirMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "careers.csv", "id,code\n\"unterminated\n")

	_, err := ReadBatchDir(dir)
	require.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
