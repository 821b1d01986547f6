package layout

import (
	"encoding/json"
	"image"
	"os"

	"github.com/ByLCY/gemdoc/links"
)

// Snapshot 是排版结果的可序列化视图。
type Snapshot struct {
	Size   image.Point   `json:"size"`
	Title  string        `json:"title,omitempty"`
	Links  []*links.Link `json:"links"`
	Images []ImageInfo   `json:"images,omitempty"`
	Runs   []Run         `json:"runs"`
}

// Snapshot 返回当前排版结果的快照。
func (d *Document) Snapshot() Snapshot {
	s := Snapshot{
		Size:  d.size,
		Title: d.title,
		Links: append([]*links.Link(nil), d.links.All()...),
		Runs:  append([]Run(nil), d.runs...),
	}
	for i := range d.images.images {
		s.Images = append(s.Images, d.ImageInfo(ImageID(i+1)))
	}
	return s
}

// WriteDebugJSON 将排版结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(doc *Document, path string) error {
	if doc == nil {
		return nil
	}
	data, err := json.MarshalIndent(doc.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
