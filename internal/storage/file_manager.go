package storage

import (
	"os"

	json "github.com/goccy/go-json"

	"emd/internal/models"
	"emd/internal/providers"
	"emd/internal/services"
	"emd/internal/storage/interfaces"
)

// FileManager persists the whole service state (metrics graph plus
// dashboard preferences) as one zstd-compressed JSON envelope. Writes go
// through a tmp file and an atomic rename so a crash never leaves a
// truncated store behind.
type FileManager struct {
	service    services.MetricsServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.MetricsServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	state := f.service.GetState()

	jsonData, err := json.Marshal(state)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	// Current envelope. V1 files carry users without a version field and
	// unmarshal with zero-value preferences.
	var state models.State
	if err := json.Unmarshal(decompressedData, &state); err == nil && state.Users != nil {
		if state.Version == 0 {
			f.logger.Warnf(providers.TypeApp, "Unversioned DB found, migrating to v%d envelope", models.StateVersion)
		}
		f.service.PutState(&state)
		return nil
	}

	// Oldest format: a bare user map at the top level.
	f.logger.Warnf(providers.TypeApp, "Inconsistent DB found, try to migrate from old data format")
	var users map[string]*models.User
	if err := json.Unmarshal(decompressedData, &users); err != nil || users == nil {
		f.logger.Warnf(providers.TypeApp, "Migration failed")
		return err
	}
	f.logger.Warnf(providers.TypeApp, "Migration from bare user map successful")
	f.service.PutState(&models.State{Version: models.StateVersion, Users: users})
	return nil
}
