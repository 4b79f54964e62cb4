package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"service_name",
			"customer_name",
			"address",
			"scheduled_at",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"service_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"customer_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"customer_phone": bson.M{
				"bsonType": "string",
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 300,
			},

			"scheduled_at": bson.M{
				"bsonType": "date",
			},

			"base_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"quantity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  100,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"offered",
					"negotiating",
					"accepted",
					"rejected",
					"completed",
					"cancelled",
				},
			},

			"provider_responses": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"provider_id", "response", "responded_at"},
					"properties": bson.M{
						"provider_id": bson.M{
							"bsonType":  "string",
							"minLength": 24,
							"maxLength": 24,
						},
						"response": bson.M{
							"bsonType": "string",
							"enum":     []string{"accepted", "rejected"},
						},
						"responded_at": bson.M{
							"bsonType": "date",
						},
						"rejection_reason": bson.M{
							"bsonType": "string",
						},
					},
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
					"history": bson.M{
						"bsonType": "array",
					},
				},
			},

			"resident_request_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
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
