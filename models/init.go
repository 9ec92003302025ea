package models

import "gorm.io/gorm"

// CreateDefaultColumns seeds the well-known stages for a freshly created
// pipeline. Safe to call twice: existing columns are left alone.
func CreateDefaultColumns(db *gorm.DB, pipelineID uint) error {
	defaults := []PipelineColumn{
		{PipelineID: pipelineID, Name: ColumnNameNewContact, Position: 0},
		{PipelineID: pipelineID, Name: "Em Atendimento", Position: 1},
		{PipelineID: pipelineID, Name: "Aguardando Cliente", Position: 2},
		{PipelineID: pipelineID, Name: "Perdidos", Position: 3},
		{PipelineID: pipelineID, Name: ColumnNameFinalized, Position: 4},
	}
	for _, col := range defaults {
		if err := db.FirstOrCreate(&col, "pipeline_id = ? AND name = ?", pipelineID, col.Name).Error; err != nil {
			return err
		}
	}
	return nil
}
