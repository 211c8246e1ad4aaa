package validators

import "go.mongodb.org/mongo-driver/bson"

var SpecialistValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"specialization",
			"working_hours",
			"service_ids",
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

			"specialization": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"avatar": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			// Keys are weekdays "0".."6"; null marks a day off.
			"working_hours": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": []string{"object", "null"},
					"properties": bson.M{
						"start": bson.M{
							"bsonType": "string",
							"pattern":  "^[0-2][0-9]:[0-5][0-9]$",
						},
						"end": bson.M{
							"bsonType": "string",
							"pattern":  "^[0-2][0-9]:[0-5][0-9]$",
						},
					},
				},
			},

			"service_ids": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "string",
				},
			},
		},
	},
}
