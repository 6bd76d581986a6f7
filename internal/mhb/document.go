// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mhb

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akarpov/mhb2svg/pkg/types"
)

// DocumentFile is the metadata document inside an .mhb archive.
const DocumentFile = "Document.xml"

// documentXML captures every child element of the document root in order.
// Field names vary between firmware versions, so nothing is hard-coded.
type documentXML struct {
	Fields []documentField `xml:",any"`
}

type documentField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// ParseDocument reads Document.xml from an extracted archive directory
// and returns its fields in document order.
func ParseDocument(dir string) (types.DocumentInfo, error) {
	path := filepath.Join(dir, DocumentFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", DocumentFile, err)
	}

	var doc documentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", DocumentFile, err)
	}

	info := make(types.DocumentInfo, 0, len(doc.Fields))
	for _, f := range doc.Fields {
		info = append(info, types.Field{
			Name:  f.XMLName.Local,
			Value: strings.TrimSpace(f.Value),
		})
	}
	return info, nil
}
