package tree

import (
	"encoding/json"
	"io"
	"os"

	"github.com/wyfcoding/lca/xerrors"
)

// Document 是树的 JSON 表示：{"root": 1, "adjacency": {"1": [2, 3], "2": [], "3": []}}。
type Document struct {
	Root      int           `json:"root"`
	Adjacency map[int][]int `json:"adjacency"`
}

// ReadJSON 从 r 解码 Document 并构造 Tree。
func ReadJSON(r io.Reader) (*Tree, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, xerrors.ErrInvalidInput.WithDetail("decode tree document: %v", err)
	}
	if doc.Adjacency == nil {
		return nil, xerrors.ErrMalformedTree.WithDetail("document has no adjacency")
	}
	return New(doc.Root, doc.Adjacency)
}

// LoadFile 读取 JSON 文件中的树。
func LoadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.ErrInvalidInput.WithDetail("open tree file: %v", err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Document 导出树的 JSON 表示，ReadJSON 可以原样读回。
func (t *Tree) Document() Document {
	adj := make(map[int][]int, len(t.ids))
	for i, id := range t.ids {
		kids := make([]int, len(t.children[i]))
		for j, c := range t.children[i] {
			kids[j] = t.ids[c]
		}
		adj[id] = kids
	}
	return Document{Root: t.root, Adjacency: adj}
}
