package models

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&UserModel{},
		&RentalModel{},
		&PaymentModel{},
		&TelegramUserModel{},
		&ScheduledJobModel{},
	}
}
