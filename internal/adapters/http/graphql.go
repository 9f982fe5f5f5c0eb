package http

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/paulmach/orb"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/usecases"
)

// plain converts a domain value to its JSON shape so the default resolver
// can read fields by their JSON names. Non-finite bounds become null.
func plain(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// publicError hides load failure detail behind the generic message.
func publicError(err error) error {
	if errors.Is(err, domain.ErrSceneNotReady) || errors.Is(err, domain.ErrLoad) {
		return errors.New(usecases.LoadErrorMessage)
	}
	return err
}

// pointField resolves one axis of a JSON [x, y] array member.
func pointField(member string, axis int) *graphql.Field {
	return &graphql.Field{
		Type: graphql.Float,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			m, _ := p.Source.(map[string]interface{})
			pt, _ := m[member].([]interface{})
			if len(pt) != 2 {
				return nil, nil
			}
			return pt[axis], nil
		},
	}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	noticeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Notice",
		Fields: graphql.Fields{
			"level":   &graphql.Field{Type: graphql.String},
			"message": &graphql.Field{Type: graphql.String},
			"ttl_ms":  &graphql.Field{Type: graphql.Int},
		},
	})

	rectType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Rect",
		Fields: graphql.Fields{
			"width":    &graphql.Field{Type: graphql.Float},
			"height":   &graphql.Field{Type: graphql.Float},
			"offset_x": &graphql.Field{Type: graphql.Float},
			"offset_y": &graphql.Field{Type: graphql.Float},
			"flip_y":   &graphql.Field{Type: graphql.Boolean},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundingBox",
		Fields: graphql.Fields{
			"min_x": &graphql.Field{Type: graphql.Float},
			"min_y": &graphql.Field{Type: graphql.Float},
			"max_x": &graphql.Field{Type: graphql.Float},
			"max_y": &graphql.Field{Type: graphql.Float},
		},
	})

	backgroundType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Background",
		Fields: graphql.Fields{
			"href":   &graphql.Field{Type: graphql.String},
			"width":  &graphql.Field{Type: graphql.Float},
			"height": &graphql.Field{Type: graphql.Float},
		},
	})

	styleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Style",
		Fields: graphql.Fields{
			"color":        &graphql.Field{Type: graphql.String},
			"weight":       &graphql.Field{Type: graphql.Float},
			"opacity":      &graphql.Field{Type: graphql.Float},
			"fill_color":   &graphql.Field{Type: graphql.String},
			"fill_opacity": &graphql.Field{Type: graphql.Float},
		},
	})

	markerFields := graphql.Fields{
		"radius":       &graphql.Field{Type: graphql.Float},
		"weight":       &graphql.Field{Type: graphql.Float},
		"opacity":      &graphql.Field{Type: graphql.Float},
		"fill_opacity": &graphql.Field{Type: graphql.Float},
	}
	markerType := graphql.NewObject(graphql.ObjectConfig{Name: "Marker", Fields: markerFields})

	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feature",
		Fields: graphql.Fields{
			"key":   &graphql.Field{Type: graphql.String},
			"id":    &graphql.Field{Type: graphql.String},
			"type":  &graphql.Field{Type: graphql.String},
			"label": &graphql.Field{Type: graphql.String},
			"geometry_type": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m, _ := p.Source.(map[string]interface{})
					g, _ := m["geometry"].(map[string]interface{})
					return g["type"], nil
				},
			},
		},
	})

	renderedFeatureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RenderedFeature",
		Fields: graphql.Fields{
			"feature": &graphql.Field{Type: featureType},
			"style":   &graphql.Field{Type: styleType},
			"marker":  &graphql.Field{Type: markerType},
			"tooltip": &graphql.Field{Type: graphql.String},
		},
	})

	layerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Layer",
		Fields: graphql.Fields{
			"role": &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
			"count": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m, _ := p.Source.(map[string]interface{})
					fs, _ := m["features"].([]interface{})
					return len(fs), nil
				},
			},
			"features": &graphql.Field{
				Type: graphql.NewList(renderedFeatureType),
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageLimit},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					m, _ := p.Source.(map[string]interface{})
					fs, _ := m["features"].([]interface{})
					data, _ := page(fs, max(p.Args["offset"].(int), 0), max(p.Args["limit"].(int), 0))
					return data, nil
				},
			},
		},
	})

	sceneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Scene",
		Fields: graphql.Fields{
			"version":    &graphql.Field{Type: graphql.String},
			"degenerate": &graphql.Field{Type: graphql.Boolean},
			"loaded_at":  &graphql.Field{Type: graphql.String},
			"background": &graphql.Field{Type: backgroundType},
			"bounds":     &graphql.Field{Type: boundsType},
			"rect":       &graphql.Field{Type: rectType},
			"layers":     &graphql.Field{Type: graphql.NewList(layerType)},
			"notice":     &graphql.Field{Type: noticeType},
		},
	})

	linksType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CatalogLinks",
		Fields: graphql.Fields{
			"detailsUrl": &graphql.Field{Type: graphql.String},
			"bookingUrl": &graphql.Field{Type: graphql.String},
			"phone":      &graphql.Field{Type: graphql.String},
		},
	})

	recordType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CatalogRecord",
		Fields: graphql.Fields{
			"title":    &graphql.Field{Type: graphql.String},
			"subtitle": &graphql.Field{Type: graphql.String},
			"desc":     &graphql.Field{Type: graphql.String},
			"capacity": &graphql.Field{Type: graphql.String},
			"price":    &graphql.Field{Type: graphql.String},
			"distance": &graphql.Field{Type: graphql.String},
			"tags":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"photo":    &graphql.Field{Type: graphql.String},
			"links":    &graphql.Field{Type: linksType},
		},
	})

	detailViewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DetailView",
		Fields: graphql.Fields{
			"feature_key": &graphql.Field{Type: graphql.String},
			"feature_id":  &graphql.Field{Type: graphql.String},
			"badge":       &graphql.Field{Type: graphql.String},
			"title":       &graphql.Field{Type: graphql.String},
			"subtitle":    &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"tags":        &graphql.Field{Type: graphql.NewList(graphql.String)},
			"meta": &graphql.Field{Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
				Name: "Chip",
				Fields: graphql.Fields{
					"kind": &graphql.Field{Type: graphql.String},
					"icon": &graphql.Field{Type: graphql.String},
					"text": &graphql.Field{Type: graphql.String},
				},
			}))},
			"media": &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{
				Name: "Media",
				Fields: graphql.Fields{
					"photo_url":   &graphql.Field{Type: graphql.String},
					"alt":         &graphql.Field{Type: graphql.String},
					"placeholder": &graphql.Field{Type: graphql.String},
					"broken_text": &graphql.Field{Type: graphql.String},
				},
			})},
			"actions": &graphql.Field{Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
				Name: "Action",
				Fields: graphql.Fields{
					"kind":    &graphql.Field{Type: graphql.String},
					"title":   &graphql.Field{Type: graphql.String},
					"url":     &graphql.Field{Type: graphql.String},
					"primary": &graphql.Field{Type: graphql.Boolean},
				},
			}))},
		},
	})

	selectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SelectionState",
		Fields: graphql.Fields{
			"status":  &graphql.Field{Type: graphql.String},
			"feature": &graphql.Field{Type: featureType},
			"record":  &graphql.Field{Type: recordType},
			"view":    &graphql.Field{Type: detailViewType},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"session_id": &graphql.Field{Type: graphql.String},
			"state":      &graphql.Field{Type: selectionType},
		},
	})

	userMarkerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "UserMarker",
		Fields: graphql.Fields{
			"source_x": pointField("source", 0),
			"source_y": pointField("source", 1),
			"pixel_x":  pointField("pixel", 0),
			"pixel_y":  pointField("pixel", 1),
			"marker":   &graphql.Field{Type: markerType},
			"tooltip":  &graphql.Field{Type: graphql.String},
		},
	})

	locateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LocateResult",
		Fields: graphql.Fields{
			"marker": &graphql.Field{Type: userMarkerType},
			"viewport": &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{
				Name: "Viewport",
				Fields: graphql.Fields{
					"center_x": &graphql.Field{Type: graphql.Float},
					"center_y": &graphql.Field{Type: graphql.Float},
					"zoom":     &graphql.Field{Type: graphql.Float},
				},
			})},
			"notice": &graphql.Field{Type: noticeType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"scene": &graphql.Field{
				Type:        sceneType,
				Description: "The published scene",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					scene, err := deps.Scenes.Scene()
					if err != nil {
						return nil, publicError(err)
					}
					return plain(scene)
				},
			},
			"feature": &graphql.Field{
				Type:        renderedFeatureType,
				Description: "Get a rendered feature by key",
				Args: graphql.FieldConfigArgument{
					"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					scene, err := deps.Scenes.Scene()
					if err != nil {
						return nil, publicError(err)
					}
					rf, ok := scene.Feature(p.Args["key"].(string))
					if !ok {
						return nil, domain.ErrFeatureNotFound
					}
					return plain(rf)
				},
			},
			"featureAt": &graphql.Field{
				Type:        renderedFeatureType,
				Description: "Topmost feature under a pixel",
				Args: graphql.FieldConfigArgument{
					"x": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"y": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rf, err := deps.Scenes.FeatureAt(p.Args["x"].(float64), p.Args["y"].(float64))
					if err != nil {
						return nil, publicError(err)
					}
					return plain(rf)
				},
			},
			"catalogRecord": &graphql.Field{
				Type:        recordType,
				Description: "Get the catalog record of a feature id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rec, ok := deps.Scenes.Catalog().Lookup(p.Args["id"].(string))
					if !ok {
						return nil, nil
					}
					return plain(rec)
				},
			},
			"session": &graphql.Field{
				Type:        selectionType,
				Description: "Selection state of a viewer session",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					state, err := deps.Sessions.State(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, publicError(err)
					}
					return plain(state)
				},
			},
		},
	})

	sessionArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createSession": &graphql.Field{
				Type: sessionType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, state, err := deps.Sessions.CreateSession(p.Context)
					if err != nil {
						return nil, publicError(err)
					}
					return plain(SessionResponse{SessionID: id, State: state})
				},
			},
			"select": &graphql.Field{
				Type: selectionType,
				Args: graphql.FieldConfigArgument{
					"session": sessionArg,
					"key":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					state, err := deps.Sessions.Select(p.Context, p.Args["session"].(string), p.Args["key"].(string))
					if err != nil {
						return nil, publicError(err)
					}
					return plain(state)
				},
			},
			"selectAt": &graphql.Field{
				Type: selectionType,
				Args: graphql.FieldConfigArgument{
					"session": sessionArg,
					"x":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"y":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					state, err := deps.Sessions.SelectAt(p.Context, p.Args["session"].(string), p.Args["x"].(float64), p.Args["y"].(float64))
					if err != nil {
						return nil, publicError(err)
					}
					return plain(state)
				},
			},
			"closeSelection": &graphql.Field{
				Type: selectionType,
				Args: graphql.FieldConfigArgument{"session": sessionArg},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					state, err := deps.Sessions.Close(p.Context, p.Args["session"].(string))
					if err != nil {
						return nil, publicError(err)
					}
					return plain(state)
				},
			},
			"locate": &graphql.Field{
				Type:        locateType,
				Description: "Report a geolocation result; omit x and y when the lookup failed",
				Args: graphql.FieldConfigArgument{
					"session": sessionArg,
					"x":       &graphql.ArgumentConfig{Type: graphql.Float},
					"y":       &graphql.ArgumentConfig{Type: graphql.Float},
					"zoom":    &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					x, okX := p.Args["x"].(float64)
					y, okY := p.Args["y"].(float64)
					pt := orb.Point{math.NaN(), math.NaN()}
					if okX && okY {
						pt = orb.Point{x, y}
					}
					res, err := deps.Sessions.Locate(p.Context, p.Args["session"].(string), pt, p.Args["zoom"].(float64), okX && okY)
					if err != nil {
						return nil, publicError(err)
					}
					return plain(res)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
