package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"patient_id",
			"doctor_id",
			"appointment_date",
			"appointment_time",
			"status",
			"active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"patient_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"doctor_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"appointment_date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"appointment_time": bson.M{
				"bsonType": "string",
				"pattern":  `^([01]?[0-9]|2[0-3]):[0-5][0-9]-([01]?[0-9]|2[0-3]):[0-5][0-9]$`,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"completed",
					"cancelled",
				},
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"symptoms": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"doctor_notes": bson.M{
				"bsonType":  "string",
				"maxLength": 5000,
			},

			"prescription": bson.M{
				"bsonType":  "string",
				"maxLength": 5000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
