package repo

import (
	"context"
	"errors"
	"time"

	perr "ucrfood/internal/platform/errors"
	"ucrfood/internal/platform/store"
	ptime "ucrfood/internal/platform/time"
	"ucrfood/internal/services/menus/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// document shapes, content stays a bson.D so category order survives the round trip
type (
	mongoDoc struct {
		ID       string         `bson:"_id"`
		Location mongoLocation  `bson:"location"`
		TimeInfo mongoTimeInfo  `bson:"time_info"`
		URL      string         `bson:"url"`
		Sum      string         `bson:"sum"`
		Menus    []mongoSection `bson:"menus"`
	}
	mongoLocation struct {
		Name string `bson:"name"`
		Num  string `bson:"num"`
	}
	mongoTimeInfo struct {
		Gen      time.Time  `bson:"gen"`
		Update   *time.Time `bson:"update"`
		MenuDate string     `bson:"menu_date"`
		MenuDay  time.Time  `bson:"menu_day"`
	}
	mongoSection struct {
		Type    string `bson:"type"`
		Content bson.D `bson:"content"`
	}
)

// Mongo is the MongoDB domain.Store
type Mongo struct {
	coll *mongo.Collection
}

var _ domain.Store = (*Mongo)(nil)

// NewMongo binds the menus collection of docs
func NewMongo(docs store.Documents) *Mongo {
	if docs == nil {
		panic("menus repo requires a non nil Documents")
	}
	return &Mongo{coll: docs.Collection(Table)}
}

// Ensure creates the unique key and the menu day index
func (m *Mongo) Ensure(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "location.num", Value: 1}, {Key: "time_info.menu_date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("menus_location_day_key"),
		},
		{
			Keys:    bson.D{{Key: "time_info.menu_day", Value: 1}},
			Options: options.Index().SetName("menus_menu_day_idx"),
		},
	})
	return perr.FromMongo(err, "menus: ensure indexes")
}

// KnownHashes implements domain.Store
func (m *Mongo) KnownHashes(ctx context.Context, keys []domain.Key) (map[domain.Key]string, error) {
	out := make(map[domain.Key]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	or := make(bson.A, 0, len(keys))
	for _, k := range keys {
		or = append(or, keyFilter(k))
	}
	opts := options.Find().SetProjection(bson.D{
		{Key: "location.num", Value: 1}, {Key: "time_info.menu_date", Value: 1}, {Key: "sum", Value: 1},
	})
	var docs []mongoDoc
	if err := m.findAll(ctx, bson.D{{Key: "$or", Value: or}}, opts, &docs); err != nil {
		return nil, perr.FromMongo(err, "menus: known hashes")
	}
	for _, d := range docs {
		out[domain.Key{LocationNum: d.Location.Num, MenuDate: d.TimeInfo.MenuDate}] = d.Sum
	}
	return out, nil
}

// Upsert updates the stored document in place or inserts rec when none exists
// a duplicate key on insert means a concurrent writer won, so the update is retried once
func (m *Mongo) Upsert(ctx context.Context, rec domain.MenuRecord, now time.Time) (domain.MenuRecord, bool, error) {
	doc, err := toDoc(rec)
	if err != nil {
		return domain.MenuRecord{}, false, err
	}

	stored, found, err := m.replaceContent(ctx, rec.Key(), doc, now)
	if err != nil {
		return domain.MenuRecord{}, false, err
	}
	if found {
		return stored, false, nil
	}

	_, err = m.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		stored, found, err = m.replaceContent(ctx, rec.Key(), doc, now)
		if err == nil && !found {
			err = perr.Conflictf("menu %s vanished during upsert", rec.Key())
		}
		return stored, false, err
	}
	if err != nil {
		return domain.MenuRecord{}, false, perr.FromMongo(err, "menus: insert "+rec.Key().String())
	}
	return rec, true, nil
}

func (m *Mongo) replaceContent(ctx context.Context, key domain.Key, doc mongoDoc, now time.Time) (domain.MenuRecord, bool, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "location.name", Value: doc.Location.Name},
		{Key: "url", Value: doc.URL},
		{Key: "sum", Value: doc.Sum},
		{Key: "menus", Value: doc.Menus},
		{Key: "time_info.update", Value: now.UTC()},
	}}}
	res := m.coll.FindOneAndUpdate(ctx, keyFilter(key), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var got mongoDoc
	if err := res.Decode(&got); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.MenuRecord{}, false, nil
		}
		return domain.MenuRecord{}, false, perr.FromMongo(err, "menus: update "+key.String())
	}
	rec, err := fromDoc(got)
	return rec, true, err
}

// Get implements domain.Store
func (m *Mongo) Get(ctx context.Context, key domain.Key) (domain.MenuRecord, error) {
	var d mongoDoc
	if err := m.coll.FindOne(ctx, keyFilter(key)).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.MenuRecord{}, perr.NotFoundf("menu %s not found", key)
		}
		return domain.MenuRecord{}, perr.FromMongo(err, "menus: get "+key.String())
	}
	return fromDoc(d)
}

// ListByDate implements domain.Store
func (m *Mongo) ListByDate(ctx context.Context, menuDate string) ([]domain.MenuRecord, error) {
	var docs []mongoDoc
	opts := options.Find().SetSort(bson.D{{Key: "location.num", Value: 1}})
	if err := m.findAll(ctx, bson.D{{Key: "time_info.menu_date", Value: menuDate}}, opts, &docs); err != nil {
		return nil, perr.FromMongo(err, "menus: list "+menuDate)
	}
	out := make([]domain.MenuRecord, 0, len(docs))
	for _, d := range docs {
		rec, err := fromDoc(d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// HashesWithin implements domain.Store
func (m *Mongo) HashesWithin(ctx context.Context, from time.Time, days int) ([]domain.PageInfo, error) {
	lo, hi := window(from, days)
	filter := bson.D{{Key: "time_info.menu_day", Value: bson.D{{Key: "$gte", Value: lo}, {Key: "$lt", Value: hi}}}}
	opts := options.Find().
		SetProjection(bson.D{{Key: "url", Value: 1}, {Key: "sum", Value: 1}}).
		SetSort(bson.D{{Key: "time_info.menu_day", Value: 1}, {Key: "location.num", Value: 1}})

	var docs []mongoDoc
	if err := m.findAll(ctx, filter, opts, &docs); err != nil {
		return nil, perr.FromMongo(err, "menus: hashes within range")
	}
	out := make([]domain.PageInfo, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.PageInfo{URL: d.URL, Sum: d.Sum})
	}
	return out, nil
}

func (m *Mongo) findAll(ctx context.Context, filter any, opts *options.FindOptions, into *[]mongoDoc) error {
	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, into)
}

func keyFilter(k domain.Key) bson.D {
	return bson.D{{Key: "location.num", Value: k.LocationNum}, {Key: "time_info.menu_date", Value: k.MenuDate}}
}

func toDoc(rec domain.MenuRecord) (mongoDoc, error) {
	day, ok := rec.Day()
	if !ok {
		return mongoDoc{}, perr.WithField(perr.InvalidArgf("menu date %q is not MM-DD-YYYY", rec.TimeInfo.MenuDate), "menu_date")
	}
	d := mongoDoc{
		ID:       rec.ID.String(),
		Location: mongoLocation{Name: rec.Location.Name, Num: rec.Location.Num},
		TimeInfo: mongoTimeInfo{
			Gen:      rec.TimeInfo.Generated.UTC(),
			Update:   rec.TimeInfo.Updated,
			MenuDate: rec.TimeInfo.MenuDate,
			MenuDay:  day,
		},
		URL:   rec.SourceURL,
		Sum:   rec.Hash,
		Menus: make([]mongoSection, 0, len(rec.Sections)),
	}
	for _, s := range rec.Sections {
		content := make(bson.D, 0, s.Categories.Len())
		for _, name := range s.Categories.Names() {
			content = append(content, bson.E{Key: name, Value: s.Categories.Items(name)})
		}
		d.Menus = append(d.Menus, mongoSection{Type: s.Label, Content: content})
	}
	return d, nil
}

func fromDoc(d mongoDoc) (domain.MenuRecord, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.MenuRecord{}, perr.Wrapf(err, perr.ErrorCodeDB, "menus: stored id %q", d.ID)
	}
	rec := domain.MenuRecord{
		ID:       id,
		Location: domain.Location{Name: d.Location.Name, Num: d.Location.Num},
		TimeInfo: domain.TimeInfo{
			Generated: d.TimeInfo.Gen.UTC(),
			MenuDate:  d.TimeInfo.MenuDate,
		},
		SourceURL: d.URL,
		Hash:      d.Sum,
		Sections:  make([]domain.MenuSection, 0, len(d.Menus)),
	}
	rec.TimeInfo.Updated = ptime.UTCPtr(d.TimeInfo.Update)
	for _, s := range d.Menus {
		var cats domain.Categories
		for _, e := range s.Content {
			items, err := stringsOf(e.Value)
			if err != nil {
				return domain.MenuRecord{}, perr.Wrapf(err, perr.ErrorCodeDB, "menus: category %q of %s", e.Key, rec.Key())
			}
			cats.Set(e.Key, items...)
		}
		rec.Sections = append(rec.Sections, domain.MenuSection{Label: s.Type, Categories: cats})
	}
	return rec, nil
}

// stringsOf accepts the shapes the driver may hand back for an item list
func stringsOf(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return x, nil
	case bson.A:
		out := make([]string, 0, len(x))
		for _, el := range x {
			s, ok := el.(string)
			if !ok {
				return nil, errors.New("item is not a string")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errors.New("items are not an array")
}
