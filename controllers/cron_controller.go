package controller

import (
	"log"
	"strings"
	"time"

	"funilzap/models"
	"funilzap/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CronController hosts the scheduled maintenance jobs. The sweep is a single
// serialized batch run; the scheduler invoking it guarantees no overlap.
type CronController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCronController(db *gorm.DB, logger *log.Logger) *CronController {
	return &CronController{
		DB:     db,
		Logger: logger,
	}
}

// SweepResult reports what one inactivity run touched
type SweepResult struct {
	CardsProcessed int `json:"cardsProcessed"`
	CardsMoved     int `json:"cardsMoved"`
}

// TriggerInactivitySweep runs the inactivity job now
func (cc *CronController) TriggerInactivitySweep(c *fiber.Ctx) error {
	result, err := cc.RunInactivitySweep(time.Now())
	if err != nil {
		utils.LogError("inactivity_sweep_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"cardsProcessed": result.CardsProcessed,
		"cardsMoved":     result.CardsMoved,
	})
}

// RunInactivitySweep walks every pipeline's unresolved cards and applies the
// first matching inactivity rule per card. Individual card failures are
// logged and never abort the batch; the counts stay accurate either way.
func (cc *CronController) RunInactivitySweep(now time.Time) (SweepResult, error) {
	var result SweepResult

	var pipelines []models.Pipeline
	if err := cc.DB.Find(&pipelines).Error; err != nil {
		return result, err
	}

	for _, pipeline := range pipelines {
		var rules []models.InactivityRule
		if err := cc.DB.Where("pipeline_id = ?", pipeline.ID).
			Order("position ASC, id ASC").Find(&rules).Error; err != nil {
			cc.Logger.Printf("failed to load rules for pipeline %d: %v", pipeline.ID, err)
			continue
		}
		if len(rules) == 0 {
			continue
		}

		var columns []models.PipelineColumn
		if err := cc.DB.Where("pipeline_id = ?", pipeline.ID).Find(&columns).Error; err != nil {
			cc.Logger.Printf("failed to load columns for pipeline %d: %v", pipeline.ID, err)
			continue
		}
		columnIDs := make([]uint, 0, len(columns))
		for _, col := range columns {
			columnIDs = append(columnIDs, col.ID)
		}
		if len(columnIDs) == 0 {
			continue
		}

		var cards []models.Card
		if err := cc.DB.Where("column_id IN ? AND resolution_status IS NULL AND completion_type IS NULL", columnIDs).
			Find(&cards).Error; err != nil {
			cc.Logger.Printf("failed to load cards for pipeline %d: %v", pipeline.ID, err)
			continue
		}

		for _, card := range cards {
			result.CardsProcessed++

			rule := firstMatchingRule(rules, card, inactiveDays(now, card))
			if rule == nil {
				continue
			}

			moved, err := cc.applyRule(*rule, &card, columns)
			if err != nil {
				cc.Logger.Printf("failed to apply rule %d to card %d: %v", rule.ID, card.ID, err)
				continue
			}
			if moved {
				result.CardsMoved++
			}
		}
	}

	return result, nil
}

// applyRule performs the rule's mutations: a column move when the target
// differs from the current column, and a resolution-status change. Both
// happen for the same matched rule when both are configured.
func (cc *CronController) applyRule(rule models.InactivityRule, card *models.Card, columns []models.PipelineColumn) (bool, error) {
	updates := map[string]interface{}{}
	moved := false

	if rule.MoveToColumnName != nil {
		target := findColumnByName(columns, *rule.MoveToColumnName)
		if target == nil {
			cc.Logger.Printf("rule %d targets unknown column %q", rule.ID, *rule.MoveToColumnName)
		} else if target.ID != card.ColumnID {
			updates["column_id"] = target.ID
			moved = true
		}
	}

	if rule.SetResolutionStatus != nil {
		updates["resolution_status"] = *rule.SetResolutionStatus
	}

	if len(updates) == 0 {
		return false, nil
	}

	if err := cc.DB.Model(card).Updates(updates).Error; err != nil {
		return false, err
	}

	if moved {
		PublishBoardEvent(BoardEvent{Type: "card_moved", CardID: card.ID, ColumnID: updates["column_id"].(uint), Title: card.Title})
	}
	return moved, nil
}

// inactiveDays is measured against the most recent of last activity and
// creation time.
func inactiveDays(now time.Time, card models.Card) int {
	days := int(now.Sub(card.ActivityReference()).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// firstMatchingRule returns the first rule in listed order that applies to
// the card, or nil. First match wins; later rules are never evaluated.
func firstMatchingRule(rules []models.InactivityRule, card models.Card, inactiveDays int) *models.InactivityRule {
	for i := range rules {
		if ruleMatches(rules[i], card, inactiveDays) {
			return &rules[i]
		}
	}
	return nil
}

func ruleMatches(rule models.InactivityRule, card models.Card, inactiveDays int) bool {
	if rule.FunnelType != nil && !strings.EqualFold(*rule.FunnelType, card.FunnelType) {
		return false
	}
	if inactiveDays < rule.InactivityDays {
		return false
	}
	if rule.OnlyIfNonMonetary && card.Value > 0 {
		return false
	}
	if rule.OnlyIfProgressBelow != nil && card.ProgressPercent >= *rule.OnlyIfProgressBelow {
		return false
	}
	return true
}

func findColumnByName(columns []models.PipelineColumn, name string) *models.PipelineColumn {
	for i := range columns {
		if strings.EqualFold(columns[i].Name, name) {
			return &columns[i]
		}
	}
	return nil
}
