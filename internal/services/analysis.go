package services

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// jsonb helpers shared by the idea and paper pipelines. Stored analysis
// blobs are best-effort on read: a row with an unparsable embeddings column
// simply contributes no vectors, which the comparator already tolerates.

func marshalJSONB(v any) datatypes.JSON {
	blob, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(blob)
}

func vectorsFromJSONB(raw datatypes.JSON) map[string][]float32 {
	if len(raw) == 0 {
		return nil
	}
	var out map[string][]float32
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func hashesFromJSONB(raw datatypes.JSON) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
