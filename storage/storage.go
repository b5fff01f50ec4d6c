// dancer.go - a dancing-links Sudoku solver and web service.
// Copyright (C) 2016-2017 Daniel C. Brotsky.
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, write to the Free Software Foundation, Inc.,
// 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
// Licensed under the LGPL v3.  See the LICENSE file for details

// Package storage is the cache layer behind the dancer commands:
// user sessions, the solve history, and the solved-grid cache all
// live in Redis.  The puzzle collection itself stays in process
// memory; nothing here is a durable puzzle store.
package storage

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/gomodule/redigo/redis"
)

// Connect establishes the Redis connection configured in the
// environment.  Returns the connection id (the URL connected to)
// so callers can log where their data went.
func Connect() (cacheId string, err error) {
	rdInit()
	rdMutex.Lock()
	defer rdMutex.Unlock()
	return rdConnect()
}

// Close tears down the Redis connection.
func Close() {
	rdMutex.Lock()
	defer rdMutex.Unlock()
	rdClose()
}

/*

cache using Redis

*/

// Redis connection data
var (
	rdc     redis.Conn // open connection, if any
	rdUrl   string     // URL for the open connection
	rdEnv   string     // keyspace prefix for this application environment
	rdMutex sync.Mutex // prevent concurrent connection use
)

// rdInit - look up Redis and keyspace info from the environment.
// Heroku-style deployments set REDISTOGO_URL, everything else
// sets REDIS_URL, and a bare development box gets the local
// server.  DANCER_ENV keeps different deployments of the same
// application out of each other's keys.
func rdInit() {
	if url := os.Getenv("REDISTOGO_URL"); url != "" {
		rdUrl = url
	} else if url := os.Getenv("REDIS_URL"); url != "" {
		rdUrl = url
	} else {
		rdUrl = "redis://localhost:6379/0"
	}
	if env := os.Getenv("DANCER_ENV"); env != "" {
		rdEnv = env
	} else {
		rdEnv = "dev"
	}
}

// rdConnect: connect to the given Redis URL.  Returns the
// connection id, if successful, an error otherwise.
func rdConnect() (string, error) {
	conn, err := redis.DialURL(rdUrl)
	if err != nil {
		err = fmt.Errorf("Couldn't connect to cache at %q: %v", rdUrl, err)
		return "", err
	}
	log.Printf("Connected to cache at %q (env: %q)", rdUrl, rdEnv)
	rdc = conn
	return rdUrl, nil
}

// rdClose: close the given Redis connection.
func rdClose() {
	if rdc != nil {
		rdc.Close()
		log.Print("Closed connection to cache.")
		rdc = nil
	}
}

// rdExecute: execute the body with the Redis mutex and
// connection.  Meant to be used inside a handler, because errors
// in execution will panic back to the handler level.
func rdExecute(body func() error) {
	// wrap the body against runtime and cache failures
	wrapper := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					err = e
				} else {
					err = fmt.Errorf("%v", r)
				}
				log.Printf("Caught panic during rdExecute: %v", err)
			}
		}()
		// Because Redis connections can go away without warning,
		// we ping to make sure the connection is alive, and try
		// to reconnect if not.
		if _, err := rdc.Do("PING"); err != nil {
			log.Printf("PING failure with cache: %v", err)
			rdClose()
			if _, err = rdConnect(); err != nil {
				return fmt.Errorf("Failed to reconnect to cache at %q", rdUrl)
			}
		}
		// connection is good; run the body
		return body()
	}
	// grab the mutex and execute the body
	rdMutex.Lock()
	defer func(err error) {
		rdMutex.Unlock()
		if err != nil {
			panic(err)
		}
	}(wrapper())
}
