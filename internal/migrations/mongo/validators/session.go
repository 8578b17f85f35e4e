package validators

import "go.mongodb.org/mongo-driver/bson"

// SessionValidator matches the documents written by session.MongoStore. Only
// the token and expiry are mandatory; identity fields may be filled from the
// token claims later.
var SessionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "token", "expires_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"token":      bson.M{"bsonType": "string"},
			"userId":     bson.M{"bsonType": "string"},
			"roleId":     bson.M{"bsonType": "string", "enum": []string{"", "1", "2", "3"}},
			"name":       bson.M{"bsonType": "string"},
			"email":      bson.M{"bsonType": "string"},
			"updated_at": bson.M{"bsonType": "date"},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}
