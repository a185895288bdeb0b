package dynamo

import "github.com/ruralsv/retreat/models"

// Single-table item kinds share one PK per collection; the SK is the record
// id. New kinds are additive: deploying a new collection never touches the
// items of an existing one.
const (
	pkSlots   = "SLOT"
	pkGallery = "GALLERY"
	pkMoments = "MOMENT"
	pkPasses  = "PASS"
	pkStats   = "STATS"
)

type dynamoSlot struct {
	PK   string `dynamodbav:"PK"`
	SK   string `dynamodbav:"SK"`
	Data string `dynamodbav:"Data"`
}

func slotToDynamo(s models.ImageSlot) dynamoSlot {
	return dynamoSlot{PK: pkSlots, SK: s.ID, Data: s.Data}
}

func slotFromDynamo(ds dynamoSlot) models.ImageSlot {
	return models.ImageSlot{ID: ds.SK, Data: ds.Data}
}

type dynamoGalleryItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	CreatedAt int64  `dynamodbav:"CreatedAt"`
}

func galleryItemToDynamo(item models.GalleryItem) dynamoGalleryItem {
	return dynamoGalleryItem{PK: pkGallery, SK: item.ID, Data: item.Data, CreatedAt: item.CreatedAt}
}

func galleryItemFromDynamo(d dynamoGalleryItem) models.GalleryItem {
	return models.GalleryItem{ID: d.SK, Data: d.Data, CreatedAt: d.CreatedAt}
}

type dynamoMoment struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	Caption   string `dynamodbav:"Caption"`
	Author    string `dynamodbav:"Author"`
	Location  string `dynamodbav:"Location"`
	CreatedAt int64  `dynamodbav:"CreatedAt"`
}

func momentToDynamo(m models.GuestMoment) dynamoMoment {
	return dynamoMoment{
		PK:        pkMoments,
		SK:        m.ID,
		Data:      m.Data,
		Caption:   m.Caption,
		Author:    m.Author,
		Location:  m.Location,
		CreatedAt: m.CreatedAt,
	}
}

func momentFromDynamo(d dynamoMoment) models.GuestMoment {
	return models.GuestMoment{
		ID:        d.SK,
		Data:      d.Data,
		Caption:   d.Caption,
		Author:    d.Author,
		Location:  d.Location,
		CreatedAt: d.CreatedAt,
	}
}

type dynamoPass struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Name      string `dynamodbav:"Name"`
	Email     string `dynamodbav:"Email"`
	Secret    string `dynamodbav:"Secret"`
	CreatedAt int64  `dynamodbav:"CreatedAt"`
	Avatar    string `dynamodbav:"Avatar"`
}

func passToDynamo(p models.Pass) dynamoPass {
	return dynamoPass{
		PK:        pkPasses,
		SK:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Secret:    p.Secret,
		CreatedAt: p.CreatedAt,
		Avatar:    p.Avatar,
	}
}

func passFromDynamo(d dynamoPass) models.Pass {
	return models.Pass{
		ID:        d.SK,
		Name:      d.Name,
		Email:     d.Email,
		Secret:    d.Secret,
		CreatedAt: d.CreatedAt,
		Avatar:    d.Avatar,
	}
}

type dynamoCounter struct {
	PK    string `dynamodbav:"PK"`
	SK    string `dynamodbav:"SK"`
	Count int    `dynamodbav:"Count"`
}
