package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"unit_id",
			"check_in",
			"check_out",
			"party_size",
			"holder_id",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"unit_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"check_in": bson.M{
				"bsonType": "date",
			},
			"check_out": bson.M{
				"bsonType": "date",
			},
			"party_size": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
			"holder_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},
			"status": bson.M{
				"enum": []string{"confirmed", "cancelled"},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
			"cancelled_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
