package validators

import "go.mongodb.org/mongo-driver/bson"

var UnitValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"asset_id",
			"country",
			"city",
			"category",
			"tier",
			"max_occupancy",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},
			"asset_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"country": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 64,
			},
			"city": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"category": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},
			"tier": bson.M{
				"enum": []string{"Silver", "Gold", "Platinum", "Signature"},
			},
			"max_occupancy": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  64,
			},
			"status": bson.M{
				"enum": []string{"active", "inactive"},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
