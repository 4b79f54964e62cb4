package validators

import "go.mongodb.org/mongo-driver/bson"

var ResidentRequestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"homeowner_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"service_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"open",
					"accepted",
					"denied",
				},
			},

			"negotiation": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"is_active": bson.M{
						"bsonType": "bool",
					},
					"proposed_amount": bson.M{
						"bsonType": []string{"double", "int", "long", "decimal"},
					},
					"status": bson.M{
						"bsonType": "string",
						"enum":     []string{"pending", "accepted", "declined"},
					},
				},
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
