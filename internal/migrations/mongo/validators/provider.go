package validators

import "go.mongodb.org/mongo-driver/bson"

var ProviderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"phone": bson.M{
				"bsonType": "string",
			},

			"services": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 2,
					"maxLength": 100,
				},
			},

			"rates": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": []string{"double", "int", "long", "decimal"},
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"active",
					"pending",
					"suspended",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
