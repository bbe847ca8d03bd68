package weaviate

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/hackgraph/hackgraph/domain/catalog"
	"github.com/hackgraph/hackgraph/domain/search"
)

// Property names in the project class.
const (
	propProjectID            = "project_id"
	propName                 = "name"
	propTagline              = "tagline"
	propDescription          = "description"
	propHowItsMade           = "how_its_made"
	propEventName            = "event_name"
	propPrizeTypes           = "prize_types"
	propSponsorOrganizations = "sponsor_organizations"
	propFingerprint          = "fingerprint"
)

// objectID derives a stable Weaviate object id from a project id, so
// repeated upserts of the same project address the same object.
func objectID(projectID string) string {
	hash := sha256.Sum256([]byte(projectID))
	id, err := uuid.FromBytes(hash[:16])
	if err != nil {
		// FromBytes only fails on wrong length; 16 bytes never does.
		panic(err)
	}
	return id.String()
}

// objectFromDocument builds the batch object for a document upsert.
func objectFromDocument(className string, doc catalog.ProjectDocument) *models.Object {
	return &models.Object{
		Class:  className,
		ID:     strfmt.UUID(objectID(doc.ID())),
		Vector: models.C11yVector(doc.Embedding()),
		Properties: map[string]interface{}{
			propProjectID:            doc.ID(),
			propName:                 doc.Name(),
			propTagline:              doc.Tagline(),
			propDescription:          doc.Description(),
			propHowItsMade:           doc.HowItsMade(),
			propEventName:            doc.EventName(),
			propPrizeTypes:           doc.PrizeTypes(),
			propSponsorOrganizations: doc.SponsorOrganizations(),
			propFingerprint:          doc.Fingerprint(),
		},
	}
}

// documentFromObject reconstructs a document from a stored object.
func documentFromObject(obj *models.Object) (catalog.ProjectDocument, error) {
	props, ok := obj.Properties.(map[string]interface{})
	if !ok {
		return catalog.ProjectDocument{}, fmt.Errorf("unexpected properties type %T", obj.Properties)
	}

	id := stringProp(props, propProjectID)
	if id == "" {
		return catalog.ProjectDocument{}, fmt.Errorf("object %s has no %s property", obj.ID, propProjectID)
	}

	return catalog.ReconstructDocument(
		id,
		stringProp(props, propName),
		stringProp(props, propTagline),
		stringProp(props, propDescription),
		stringProp(props, propHowItsMade),
		stringProp(props, propEventName),
		stringSliceProp(props, propPrizeTypes),
		stringSliceProp(props, propSponsorOrganizations),
		[]float32(obj.Vector),
		stringProp(props, propFingerprint),
	), nil
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceProp(props map[string]interface{}, key string) []string {
	raw, ok := props[key].([]interface{})
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			values = append(values, s)
		}
	}
	return values
}

// graphQL response shapes for the vector query. The client returns untyped
// JSON, so hits are decoded through a marshal round trip into these structs.
type queryHit struct {
	ProjectID  string `json:"project_id"`
	Additional struct {
		Certainty float64 `json:"certainty"`
	} `json:"_additional"`
}

// hitsFromResponse decodes the Get result for className into ranked hits.
func hitsFromResponse(resp *models.GraphQLResponse, className string) ([]search.Hit, error) {
	get, ok := resp.Data["Get"]
	if !ok {
		return nil, nil
	}

	raw, err := json.Marshal(get)
	if err != nil {
		return nil, fmt.Errorf("encode query response: %w", err)
	}

	var byClass map[string][]queryHit
	if err := json.Unmarshal(raw, &byClass); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}

	rows := byClass[className]
	hits := make([]search.Hit, 0, len(rows))
	for _, row := range rows {
		if row.ProjectID == "" {
			continue
		}
		hits = append(hits, search.NewHit(row.ProjectID, row.Additional.Certainty))
	}
	return hits, nil
}
