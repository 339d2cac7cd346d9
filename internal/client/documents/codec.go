package documents

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eportfolio/internal/client/models"
	"github.com/dmitrijs2005/eportfolio/internal/common"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/cv_documents.json
var schemaJSON []byte

var schema = mustSchema()

func mustSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("documents: bad embedded schema: %v", err))
	}
	return s
}

// decode parses a stored payload. Anything that is not a schema-valid
// document array is reported as ErrMalformedLocalState.
func decode(raw []byte) ([]models.CvDocument, error) {
	res, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedLocalState, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", common.ErrMalformedLocalState, strings.Join(msgs, "; "))
	}

	var docs []models.CvDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedLocalState, err)
	}
	return docs, nil
}

func encode(docs []models.CvDocument) ([]byte, error) {
	if docs == nil {
		docs = []models.CvDocument{}
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("encode cv documents: %w", err)
	}
	return b, nil
}
