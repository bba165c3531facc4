// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hexya-erp/crm/src/calendar"
	"github.com/hexya-erp/crm/src/crm"
	"github.com/hexya-erp/crm/src/models"
	"github.com/hexya-erp/crm/src/reminders"
	"github.com/hexya-erp/crm/src/tools/logging"
	"github.com/spf13/viper"
)

// memoryDriver is the name of the DB.Driver that keeps all data in memory
const memoryDriver = "memory"

// setupLogger initializes the logger
func setupLogger() {
	logging.Initialize()
	log = logging.GetLogger("init")
}

// setupDebug sets gin mode according to the Debug setting
func setupDebug() {
	if viper.GetBool("Debug") {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}

// connectToDB returns the store configured by the DB settings
func connectToDB() (models.Store, error) {
	driver := viper.GetString("DB.Driver")
	if driver == memoryDriver {
		log.Warn("Using in-memory store: data will be lost on exit")
		return models.NewMemStore(), nil
	}
	store, err := models.DBConnect(driver, models.ConnectionParams{
		Host:     viper.GetString("DB.Host"),
		Port:     viper.GetString("DB.Port"),
		User:     viper.GetString("DB.User"),
		Password: viper.GetString("DB.Password"),
		DBName:   viper.GetString("DB.Name"),
		SSLMode:  viper.GetString("DB.SSLMode"),
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// location returns the timezone in which times are displayed
func location() *time.Location {
	name := viper.GetString("App.Timezone")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("Unknown timezone, falling back to UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// newNotifier returns the notifier configured by the SMTP settings.
// Reminders are only logged when no SMTP host is set.
func newNotifier() reminders.Notifier {
	host := viper.GetString("SMTP.Host")
	if host == "" {
		log.Warn("No SMTP host configured, reminders will only be logged")
		return reminders.LogNotifier{}
	}
	return reminders.NewSMTPNotifier(reminders.SMTPConfig{
		Host:     host,
		Port:     viper.GetInt("SMTP.Port"),
		User:     viper.GetString("SMTP.User"),
		Password: viper.GetString("SMTP.Password"),
		From:     viper.GetString("SMTP.From"),
	})
}

// newEngine returns the reminder engine configured by the Reminders settings
func newEngine(store models.Store, loc *time.Location) (*reminders.Engine, error) {
	observer, err := reminders.NewPrometheusObserver("crm_reminders", nil)
	if err != nil {
		return nil, err
	}
	return reminders.NewEngine(store, reminders.ConfigSettings{}, newNotifier(),
		reminders.WithRenderer(reminders.Renderer{
			BaseURL:  viper.GetString("App.BaseURL"),
			Location: loc,
		}),
		reminders.WithObserver(observer),
		reminders.WithWorkers(viper.GetInt("Reminders.Workers")),
		reminders.WithDeliveryTimeout(viper.GetDuration("Reminders.DeliveryTimeout")),
	), nil
}

// An application holds the components built from the configuration
type application struct {
	store   models.Store
	engine  *reminders.Engine
	service *crm.Service
}

// setupApplication connects to the database and builds all components.
// The caller must close the returned application store.
func setupApplication() (*application, error) {
	store, err := connectToDB()
	if err != nil {
		return nil, err
	}
	loc := location()
	engine, err := newEngine(store, loc)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &application{
		store:   store,
		engine:  engine,
		service: crm.NewService(store, engine, calendar.New(loc, engine.Now)),
	}, nil
}
