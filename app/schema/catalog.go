// Package schema exposes the public catalog as a read-only GraphQL schema.
//
//	{ products(category: "Food", sort: "price_low") { id name price } }
//	{ product(id: 3) { name reviews { rating userName } } }
//	{ categories }
package schema

import (
	"errors"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	gql "github.com/shashiranjanraj/storefront/pkg/graphql"
)

func productOf(src any) models.Product {
	switch p := src.(type) {
	case models.Product:
		return p
	case models.ProductDetail:
		return p.Product
	}
	return models.Product{}
}

func productField(get func(models.Product) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		return get(productOf(p.Source)), nil
	}
}

var reviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Review",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.Int, Resolve: reviewField(func(r models.Review) any { return int(r.ID) })},
		"rating":   &graphql.Field{Type: graphql.Int, Resolve: reviewField(func(r models.Review) any { return r.Rating })},
		"comment":  &graphql.Field{Type: graphql.String, Resolve: reviewField(func(r models.Review) any { return r.Comment })},
		"userName": &graphql.Field{Type: graphql.String, Resolve: reviewField(func(r models.Review) any { return r.UserName })},
		"createdAt": &graphql.Field{Type: graphql.String, Resolve: reviewField(func(r models.Review) any {
			return r.CreatedAt.UTC().Format(time.RFC3339)
		})},
	},
})

func reviewField(get func(models.Review) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if r, ok := p.Source.(models.Review); ok {
			return get(r), nil
		}
		return nil, nil
	}
}

func productFields(withReviews bool) graphql.Fields {
	// Decimals are rendered as strings so no precision is lost.
	fields := graphql.Fields{
		"id":          &graphql.Field{Type: graphql.Int, Resolve: productField(func(p models.Product) any { return int(p.ID) })},
		"name":        &graphql.Field{Type: graphql.String, Resolve: productField(func(p models.Product) any { return p.Name })},
		"description": &graphql.Field{Type: graphql.String, Resolve: productField(func(p models.Product) any { return p.Description })},
		"price":       &graphql.Field{Type: graphql.String, Resolve: productField(func(p models.Product) any { return p.Price.String() })},
		"category":    &graphql.Field{Type: graphql.String, Resolve: productField(func(p models.Product) any { return p.Category })},
		"image":       &graphql.Field{Type: graphql.String, Resolve: productField(func(p models.Product) any { return p.Image })},
		"stock":       &graphql.Field{Type: graphql.Int, Resolve: productField(func(p models.Product) any { return p.Stock })},
		"rating":      &graphql.Field{Type: graphql.String, Resolve: productField(func(p models.Product) any { return p.Rating.String() })},
		"reviewsCount": &graphql.Field{Type: graphql.Int, Resolve: productField(func(p models.Product) any {
			return p.ReviewsCount
		})},
		"createdAt": &graphql.Field{Type: graphql.String, Resolve: productField(func(p models.Product) any {
			return p.CreatedAt.UTC().Format(time.RFC3339)
		})},
	}
	if withReviews {
		fields["reviews"] = &graphql.Field{
			Type: graphql.NewList(reviewType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if d, ok := p.Source.(models.ProductDetail); ok {
					return d.Reviews, nil
				}
				return []models.Review{}, nil
			},
		}
	}
	return fields
}

var (
	productType = graphql.NewObject(graphql.ObjectConfig{
		Name:   "Product",
		Fields: productFields(false),
	})
	productDetailType = graphql.NewObject(graphql.ObjectConfig{
		Name:   "ProductDetail",
		Fields: productFields(true),
	})
)

// New builds the catalog schema on top of svc.
func New(svc *services.CatalogService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
					"sort":     &graphql.ArgumentConfig{Type: graphql.String},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int},
					"offset":   &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					f := repositories.ProductFilter{}
					f.Category, _ = p.Args["category"].(string)
					f.Search, _ = p.Args["search"].(string)
					f.Sort, _ = p.Args["sort"].(string)
					f.Limit, _ = p.Args["limit"].(int)
					f.Offset, _ = p.Args["offset"].(int)
					return svc.ListProducts(p.Context, f)
				},
			},
			"product": &graphql.Field{
				Type: productDetailType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					detail, err := svc.GetProduct(p.Context, uint(id))
					if errors.Is(err, services.ErrNotFound) {
						return nil, nil
					}
					return detail, err
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return svc.ListCategories(p.Context)
				},
			},
		},
	})
	return gql.NewSchema(query)
}
