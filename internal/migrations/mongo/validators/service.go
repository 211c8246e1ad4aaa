package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"duration_min",
			"price",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"duration_min": bson.M{
				"bsonType": "int",
				"minimum":  5,
				"maximum":  480,
			},

			"price": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"buffer_before_min": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  120,
			},

			"buffer_after_min": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  120,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"icon": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},
		},
	},
}
