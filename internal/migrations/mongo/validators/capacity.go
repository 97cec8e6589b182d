package validators

import "go.mongodb.org/mongo-driver/bson"

var TierValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "total_supply", "active_sold", "sales_enabled"},
		"properties": bson.M{
			"_id": bson.M{
				"enum": []string{"Silver", "Gold", "Platinum", "Signature"},
			},
			"total_supply": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"active_sold": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"sales_cap": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"sales_enabled": bson.M{
				"bsonType": "bool",
			},
			"updated_by": bson.M{
				"bsonType": "string",
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

// SnapshotValidator only pins the fields the auditor queries on; tier rows are free-form.
var SnapshotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "trigger", "status", "recorded_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"trigger": bson.M{
				"bsonType": "string",
			},
			"status": bson.M{
				"enum": []string{"GREEN", "YELLOW", "RED"},
			},
			"utilization_percent": bson.M{
				"bsonType": []string{"double", "int", "long"},
			},
			"recorded_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var LockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"owner": bson.M{
				"bsonType": "string",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
