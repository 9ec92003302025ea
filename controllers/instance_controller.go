package controller

import (
	"log"

	"funilzap/config"
	"funilzap/models"
	"funilzap/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type InstanceController struct {
	DB      *gorm.DB
	Logger  *log.Logger
	Gateway *utils.EvolutionClient
}

func NewInstanceController(db *gorm.DB, logger *log.Logger, gateway *utils.EvolutionClient) *InstanceController {
	return &InstanceController{
		DB:      db,
		Logger:  logger,
		Gateway: gateway,
	}
}

// CreateInstance registers a gateway connection for a pipeline
func (ic *InstanceController) CreateInstance(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name       string `json:"name" validate:"required,min=3,max=60"`
		PipelineID uint   `json:"pipeline_id" validate:"required"`
		Provider   string `json:"provider" validate:"omitempty,oneof=evolution wppconnect"`
		Token      string `json:"token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var pipeline models.Pipeline
	if err := ic.DB.Where("id = ? AND user_id = ?", input.PipelineID, user.ID).First(&pipeline).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Pipeline not found", nil)
	}

	provider := input.Provider
	if provider == "" {
		provider = models.ProviderEvolution
	}

	instance := models.WhatsAppInstance{
		UserID:     user.ID,
		PipelineID: pipeline.ID,
		Name:       input.Name,
		Provider:   provider,
		BaseURL:    config.AppConfig.EvolutionAPIURL,
		APIToken:   input.Token,
		Status:     models.InstanceStatusDisconnected,
	}
	if err := ic.DB.Create(&instance).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create instance", err)
	}

	// Remote registration is best-effort; a failure leaves the row in error
	// state so the user can retry the connect.
	if provider == models.ProviderEvolution && ic.Gateway.Enabled() {
		ctx := c.UserContext()
		if err := ic.Gateway.CreateInstance(ctx, instance.Name, instance.APIToken); err != nil {
			ic.markError(&instance, err)
			return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(instance))
		}
		if config.AppConfig.WebhookPublicURL != "" {
			if err := ic.Gateway.SetWebhook(ctx, instance.Name, config.AppConfig.WebhookPublicURL+"/webhooks/evolution"); err != nil {
				ic.Logger.Printf("failed to set webhook for instance %s: %v", instance.Name, err)
			}
		}
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(instance))
}

// GetInstances lists the workspace's gateway connections
func (ic *InstanceController) GetInstances(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var instances []models.WhatsAppInstance
	if err := ic.DB.Where("user_id = ?", user.ID).Find(&instances).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch instances", err)
	}

	return c.JSON(utils.SuccessResponse(instances))
}

// GetInstance returns one gateway connection
func (ic *InstanceController) GetInstance(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	instance, ok := ic.ownedInstance(c, user)
	if !ok {
		return nil
	}

	return c.JSON(utils.SuccessResponse(instance))
}

// ConnectInstance starts the pairing flow and returns the QR payload
func (ic *InstanceController) ConnectInstance(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	instance, ok := ic.ownedInstance(c, user)
	if !ok {
		return nil
	}

	qr, gwErr := ic.Gateway.Connect(c.UserContext(), instance.Name)
	if gwErr != nil {
		ic.markError(instance, gwErr)
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Gateway connect failed", gwErr)
	}

	if err := ic.DB.Model(instance).Updates(map[string]interface{}{
		"status":     models.InstanceStatusConnecting,
		"last_error": "",
	}).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update instance", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  models.InstanceStatusConnecting,
		"qrcode":  qr,
	})
}

// DisconnectInstance drops the gateway session
func (ic *InstanceController) DisconnectInstance(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	instance, ok := ic.ownedInstance(c, user)
	if !ok {
		return nil
	}

	if gwErr := ic.Gateway.Logout(c.UserContext(), instance.Name); gwErr != nil {
		ic.markError(instance, gwErr)
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Gateway logout failed", gwErr)
	}

	if err := ic.DB.Model(instance).Update("status", models.InstanceStatusDisconnected).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update instance", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"status":  models.InstanceStatusDisconnected,
	})
}

// DeleteInstance tears the connection down remotely (best-effort) and
// removes the local row.
func (ic *InstanceController) DeleteInstance(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	instance, ok := ic.ownedInstance(c, user)
	if !ok {
		return nil
	}

	if ic.Gateway.Enabled() {
		if gwErr := ic.Gateway.DeleteInstance(c.UserContext(), instance.Name); gwErr != nil {
			ic.Logger.Printf("remote teardown failed for instance %s: %v", instance.Name, gwErr)
		}
	}

	if err := ic.DB.Delete(instance).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete instance", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

func (ic *InstanceController) ownedInstance(c *fiber.Ctx, user *models.User) (*models.WhatsAppInstance, bool) {
	var instance models.WhatsAppInstance
	if err := ic.DB.Where("id = ? AND user_id = ?", utils.ParseUint(c.Params("id")), user.ID).
		First(&instance).Error; err != nil {
		_ = utils.ErrorResponse(c, fiber.StatusNotFound, "Instance not found", nil)
		return nil, false
	}
	return &instance, true
}

func (ic *InstanceController) markError(instance *models.WhatsAppInstance, err error) {
	ic.Logger.Printf("gateway error for instance %s: %v", instance.Name, err)
	ic.DB.Model(instance).Updates(map[string]interface{}{
		"status":     models.InstanceStatusError,
		"last_error": err.Error(),
	})
}
