// Package config provides configuration parsing for the render engine.
//
// The configuration is stored in engine.yaml (or any file passed with
// --config; JSON works too). Every key can be overridden from the
// environment with the VANGO_ENGINE_ prefix, dots replaced by underscores:
// VANGO_ENGINE_SERVER_PORT=8080.
//
// # Configuration File Structure
//
//	server:
//	  host: 0.0.0.0
//	  port: 3000
//	  request_timeout: 10s
//	render:
//	  app_id: shop
//	  shell: ./shell.html
//	  title: Shop
//	  lang: en
//	  sanitize: true
//	log:
//	  level: info
//	  format: text
//	store:
//	  backend: redis
//	  redis:
//	    addr: localhost:6379
//	    ttl: 5m
//	prerender:
//	  manifest: ./routes.yaml
//	  concurrency: 4
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Port:", cfg.Server.Port)
package config
