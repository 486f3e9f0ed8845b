package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appointmentsrepo "medibook/internal/appointments/repository"
	doctorsrepo "medibook/internal/doctors/repository"
	"medibook/internal/migrations/mongo/validators"
	usersrepo "medibook/internal/users/repository"
	"medibook/pkg/logger"
)

var (
	UsersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}},
	}

	DoctorsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_user_id")},
		{Keys: bson.D{{Key: "license_number", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_license_number")},
		{Keys: bson.D{{Key: "specialization", Value: 1}}},
	}

	AppointmentsIndexes = []mongo.IndexModel{
		// At most one active appointment per doctor, date and slot.
		{
			Keys: bson.D{
				{Key: "doctor_id", Value: 1},
				{Key: "appointment_date", Value: 1},
				{Key: "appointment_time", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_active_slot").
				SetPartialFilterExpression(bson.D{{Key: "active", Value: true}}),
		},
		{Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "appointment_date", Value: -1}}},
		{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "appointment_date", Value: -1}}},
		{Keys: bson.D{{Key: "appointment_date", Value: 1}, {Key: "status", Value: 1}}},
	}

	SlotLocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at")},
	}
)

type CollectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() []CollectionDef {
	return []CollectionDef{
		{Name: usersrepo.CollectionName, Indexes: UsersIndexes, Validator: validators.UserValidator},
		{Name: doctorsrepo.CollectionName, Indexes: DoctorsIndexes, Validator: validators.DoctorValidator},
		{Name: appointmentsrepo.CollectionName, Indexes: AppointmentsIndexes, Validator: validators.AppointmentValidator},
		{Name: appointmentsrepo.SlotLockCollectionName, Indexes: SlotLocksIndexes, Validator: validators.SlotLockValidator},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
