package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"full_name",
			"email",
			"role",
			"is_active",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"full_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},
			"email": bson.M{
				"bsonType": "string",
			},
			"mobile": bson.M{
				"bsonType": "string",
			},
			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"patient", "doctor", "admin"},
			},
			"is_active": bson.M{
				"bsonType": "bool",
			},
		},
	},
}

var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "expires_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
