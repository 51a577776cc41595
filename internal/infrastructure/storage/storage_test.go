package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"beetle-pipeline/internal/domain/entity"
)

func TestCSVManifestStore_RoundTripKeepsCells(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.csv")
	content := "\ufeffpictureID,length_coord_value,note\n" +
		"A1.jpg,\"{'x1': 1, 'y1': 2, 'x2': 3, 'y2': 4}\",\n" +
		"A2.jpg,,short\n"
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	store := NewCSVManifestStore()
	m, err := store.Load(src)
	require.NoError(t, err)
	require.Equal(t, []string{"pictureID", "length_coord_value", "note"}, m.Header)
	require.Equal(t, 2, m.Len())
	require.Equal(t, "{'x1': 1, 'y1': 2, 'x2': 3, 'y2': 4}", m.Get(0, "length_coord_value"))

	m.EnsureColumn("individual_image_file_path")
	m.Set(1, "individual_image_file_path", "individual_images/A2.jpg/u.png")

	out := filepath.Join(dir, "nested", "out.csv")
	require.NoError(t, store.Save(out, m))

	again, err := store.Load(out)
	require.NoError(t, err)
	require.Equal(t, m.Header, again.Header)
	require.Equal(t, m.Rows, again.Rows)
}

func TestReadManifest_Empty(t *testing.T) {
	_, err := ReadManifest(strings.NewReader(""))
	require.Error(t, err)
}

func TestCSVDetectionLogs_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A1.csv")
	logs := NewCSVDetectionLogs()

	for i := 0; i < 2; i++ {
		log, err := logs.Open(path)
		require.NoError(t, err)
		require.NoError(t, log.Append(entity.DetectionRow{
			PictureID: "A1.jpg",
			UUID:      "u1",
			Box:       entity.Box{XMin: 1, YMin: 2, XMax: 3, YMax: 4},
			Score:     0.5,
		}))
		require.NoError(t, log.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		"pictureID,beetle_uuid,x_min,y_min,x_max,y_max,score\nA1.jpg,u1,1,2,3,4,0.5\nA1.jpg,u1,1,2,3,4,0.5\n",
		string(data))
}

func TestJSONReportWriter_SortsKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "factors.json")
	require.NoError(t, NewJSONReportWriter().WriteJSON(path, entity.ScalingFactors{"b": 2, "a": 1.5}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{\n  \"a\": 1.5,\n  \"b\": 2\n}\n", string(data))
}
