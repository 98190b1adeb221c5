package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection        = "users"
	appointmentsCollection = "appointments"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type appointmentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PatientID string             `bson:"patientId"`
	DoctorID  string             `bson:"doctorId"`
	Date      time.Time          `bson:"date"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d appointmentDoc) toAppointment() (*Appointment, error) {
	status, err := ParseStatus(d.Status)
	if err != nil {
		return nil, err
	}
	return &Appointment{
		ID:        d.ID.Hex(),
		PatientID: d.PatientID,
		DoctorID:  d.DoctorID,
		Date:      d.Date,
		Status:    status,
		CreatedAt: d.CreatedAt,
	}, nil
}

// MongoRepository keeps users and appointments in two collections of one
// database.
type MongoRepository struct {
	db           *mongo.Database
	users        *mongo.Collection
	appointments *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		db:           db,
		users:        db.Collection(usersCollection),
		appointments: db.Collection(appointmentsCollection),
	}
}

func (r *MongoRepository) CreateUser(ctx context.Context, u User) (*User, error) {
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		Role:      string(u.Role),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	u.ID = doc.ID.Hex()
	u.CreatedAt = doc.CreatedAt
	return &u, nil
}

func (r *MongoRepository) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	doc := appointmentDoc{
		ID:        primitive.NewObjectID(),
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Date:      a.Date.UTC().Truncate(time.Millisecond),
		Status:    string(a.Status),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.appointments.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	return doc.toAppointment()
}

func (r *MongoRepository) GetAppointmentByID(ctx context.Context, id string) (*Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}

	var doc appointmentDoc
	err = r.appointments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return doc.toAppointment()
}

func (r *MongoRepository) ListAppointments(ctx context.Context) ([]Appointment, error) {
	cur, err := r.appointments.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []appointmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]Appointment, 0, len(docs))
	for _, d := range docs {
		a, err := d.toAppointment()
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}
