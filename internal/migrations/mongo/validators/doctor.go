package validators

import "go.mongodb.org/mongo-driver/bson"

var DoctorValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"license_number",
			"specialization",
			"available_timeslots",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"license_number": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 20,
			},

			"specialization": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"experience_years": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  60,
			},

			"consultation_fee": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			// Keys are weekdays; entries are not checked here because the
			// self-service edit already drops anything malformed.
			"available_timeslots": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "string",
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
