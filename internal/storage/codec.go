package storage

import (
	"encoding/json"
	"errors"

	"edgeplace/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp fills the current schema/codec version on a record before it is
// persisted.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func EncodeTopology(t model.Topology) ([]byte, error) {
	return json.Marshal(t)
}

func DecodeTopology(data []byte) (model.Topology, error) {
	var topo model.Topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return model.Topology{}, err
	}
	if err := checkVersion(topo.VersionedRecord); err != nil {
		return model.Topology{}, err
	}
	return topo, nil
}

func EncodePlacement(p model.PlacementRecord) ([]byte, error) {
	return json.Marshal(p)
}

func DecodePlacement(data []byte) (model.PlacementRecord, error) {
	var record model.PlacementRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.PlacementRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.PlacementRecord{}, err
	}
	return record, nil
}

func EncodeHistory(history []model.GenerationRecord) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeHistory(data []byte) ([]model.GenerationRecord, error) {
	var history []model.GenerationRecord
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
